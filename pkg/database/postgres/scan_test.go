package postgres

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ID":        "i_d",
		"UserName":  "user_name",
		"RankType":  "rank_type",
		"uid":       "uid",
		"GachaType": "gacha_type",
	}
	for in, want := range cases {
		assert.Equal(t, want, toSnakeCase(in))
	}
}

func TestGetStructInfo(t *testing.T) {
	type record struct {
		ID       string `db:"id"`
		RankType int    `db:"rank_type"`
		Ignored  string `db:"-"`
		ItemName string
	}

	info := getStructInfo(reflect.TypeOf(record{}))
	require.Len(t, info.fields, 3)

	names := make([]string, 0, len(info.fields))
	for _, f := range info.fields {
		names = append(names, f.name)
	}
	assert.Equal(t, []string{"id", "rank_type", "item_name"}, names)
}

func TestGetStructInfo_Cached(t *testing.T) {
	type cached struct {
		Name string `db:"name"`
	}
	first := getStructInfo(reflect.TypeOf(cached{}))
	second := getStructInfo(reflect.TypeOf(cached{}))
	assert.Same(t, first, second)
}

func TestValidateConfig(t *testing.T) {
	assert.ErrorIs(t, validateConfig(nil), ErrNilConfig)
	assert.ErrorIs(t, validateConfig(&Config{}), ErrInvalidConfig)
	assert.NoError(t, validateConfig(DefaultConfig()))
}
