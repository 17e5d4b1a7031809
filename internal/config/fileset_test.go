package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFileSource(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want SourceKind
	}{
		{"literal path", "/data/cf_2012.h5", SourceLiteral},
		{"year template", "/data/cf_{}.h5", SourceYearTemplate},
		{"pipeline sentinel", "PIPELINE", SourcePipeline},
		{"template wins over sentinel text", "/data/PIPELINE_{}.h5", SourceYearTemplate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFileSource(tt.raw)
			assert.Equal(t, tt.want, got.Kind())
			assert.Equal(t, tt.raw, got.Raw())
		})
	}
}

func TestExpandYears(t *testing.T) {
	got := ExpandYears("/data/res_{}.h5", []int{2012, 2013, 2014})
	assert.Equal(t, []string{
		"/data/res_2012.h5",
		"/data/res_2013.h5",
		"/data/res_2014.h5",
	}, got, "the i-th path must carry the i-th year")
}

func TestYearInPaths(t *testing.T) {
	paths := []string{"/data/cf_2012.h5", "/data/cf_2013.h5"}
	assert.True(t, yearInPaths(2012, paths))
	assert.False(t, yearInPaths(2020, paths))
}
