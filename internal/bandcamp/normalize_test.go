package bandcamp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

func TestNormalizeDate(t *testing.T) {
	tests := map[string]string{
		"01 Feb 2021 00:00:00 GMT": "2021-02-01T00:00:00.000Z",
		"1 Feb 2021 13:45:10 GMT":  "2021-02-01T13:45:10.000Z",
		"2021-02-01T10:00:00+02:00": "2021-02-01T08:00:00.000Z",
		"February 1, 2021":         "2021-02-01T00:00:00.000Z",
		"2021-02-01":               "2021-02-01T00:00:00.000Z",
		"sometime in spring":       "sometime in spring",
		"":                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDate(in), in)
	}
}

func TestPayloadScalars(t *testing.T) {
	var v struct {
		A dto.Number     `json:"a"`
		B dto.Number     `json:"b"`
		C dto.Number     `json:"c"`
		D dto.Number     `json:"d"`
		E dto.Float      `json:"e"`
		F dto.Date       `json:"f"`
		G dto.Date       `json:"g"`
		H dto.Flag       `json:"h"`
		I dto.Flag       `json:"i"`
		J dto.StringList `json:"j"`
		K dto.StringList `json:"k"`
	}
	raw := `{"a":"123","b":45,"c":"12x","d":null,"e":"61.5","f":"01 Feb 2021 00:00:00 GMT","g":"not a date",
		"h":"invalid_crumb","i":false,"j":"one","k":["x","y"]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &v))

	assert.Equal(t, int64(123), v.A.Int64())
	assert.Equal(t, int64(45), v.B.Int64())
	assert.Zero(t, v.C)
	assert.Zero(t, v.D)
	assert.Equal(t, dto.Float(61.5), v.E)
	assert.Equal(t, "2021-02-01T00:00:00.000Z", v.F.String())
	assert.Equal(t, "not a date", v.G.String())
	assert.True(t, v.H.Set)
	assert.Equal(t, "invalid_crumb", v.H.Code)
	assert.False(t, v.I.Set)
	assert.Equal(t, dto.StringList{"one"}, v.J)
	assert.Equal(t, dto.StringList{"x", "y"}, v.K)
}

func TestNormalizeNumber(t *testing.T) {
	n, ok := NormalizeNumber(" 0042 ")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
	_, ok = NormalizeNumber("4a")
	assert.False(t, ok)
}

func TestParseDuration(t *testing.T) {
	tests := map[string]float64{
		"03:20":      200,
		"1:02:03":    3723,
		"P00H03M20S": 200,
		"PT1M":       60,
		"":           0,
		"abc":        0,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseDuration(in), in)
	}
}

func TestImagesFromURL(t *testing.T) {
	art := imagesFromURL("https://f4.bcbits.com/img/a0000000042_16.jpg")
	require.Len(t, art, 4)
	assert.Equal(t, "https://f4.bcbits.com/img/a0000000042_10.jpg", art[2].URL)

	photo := imagesFromURL("https://f4.bcbits.com/img/0000000007_21.jpg")
	require.Len(t, photo, 4)
	assert.Equal(t, "https://f4.bcbits.com/img/0000000007_3.jpg", photo[0].URL)

	foreign := imagesFromURL("https://cdn.example.org/cover.png")
	assert.Equal(t, []model.Image{{URL: "https://cdn.example.org/cover.png", Size: model.ImageLarge}}, foreign)

	assert.Nil(t, imagesFromURL(""))
}
