package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	Database   string `json:"database" validate:"required,dbname"`
	Collection string `json:"collection" validate:"omitempty,collname"`
}

func TestGlobal(t *testing.T) {
	v1 := Global()
	require.NotNil(t, v1)
	assert.Same(t, v1, Global())
	assert.Len(t, v1.trans, 2, "en and zh translators")
}

func TestValidateWithLang(t *testing.T) {
	v := New()

	assert.Nil(t, v.ValidateWithLang(target{Database: "myTestDb", Collection: "testCollection"}, LangEN))
	assert.Nil(t, v.ValidateWithLang(target{Database: "myTestDb"}, LangEN))

	errs := v.ValidateWithLang(target{}, LangEN)
	require.True(t, errs.HasErrors())
	assert.Equal(t, []string{"database"}, errs.Fields())
	assert.Equal(t, "validation failed: database is a required field", errs.Error())

	errs = v.ValidateWithLang(target{Database: "my.db", Collection: "system.users"}, LangEN)
	require.True(t, errs.HasErrors())
	assert.Equal(t, []string{"database", "collection"}, errs.Fields())
	assert.Equal(t, []string{
		"database must be a valid MongoDB database name",
		"collection must be a valid MongoDB collection name",
	}, errs.Messages())
}

func TestValidateWithLang_Chinese(t *testing.T) {
	errs := StructWithLang(target{Database: "a/b"}, LangZH)
	require.True(t, errs.HasErrors())
	assert.Equal(t, "database必须是有效的MongoDB数据库名称", errs.Messages()[0])
}

func TestGetTranslator_FallsBackToEnglish(t *testing.T) {
	v := New()
	assert.Equal(t, v.GetTranslator(LangEN), v.GetTranslator("fr"))
}

func TestVarWithLang(t *testing.T) {
	assert.Nil(t, VarWithLang("testCollection", "collection", "required,collname", LangEN))

	errs := VarWithLang("", "collection", "required,collname", LangEN)
	require.True(t, errs.HasErrors())
	assert.Equal(t, []string{"collection"}, errs.Fields())
	assert.Equal(t, "collection is a required field", errs.Messages()[0])

	assert.Error(t, Var("bad$name", "collname"))
	assert.NoError(t, Struct(target{Database: "ok"}))
}

func TestIsDatabaseName(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"simple", "myTestDb", true},
		{"digits and underscore", "db_01", true},
		{"empty", "", false},
		{"dot", "my.db", false},
		{"slash", "a/b", false},
		{"space", "my db", false},
		{"dollar", "db$", false},
		{"too long", string(make([]byte, 64)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDatabaseName(tt.value))
		})
	}
}

func TestIsCollectionName(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"simple", "testCollection", true},
		{"dotted", "logs.2024", true},
		{"empty", "", false},
		{"blank", "   ", false},
		{"dollar", "a$b", false},
		{"null", "a\x00b", false},
		{"system", "system.users", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCollectionName(tt.value))
		})
	}
}

func TestValidationErrors_NilSafe(t *testing.T) {
	var errs *ValidationErrors
	assert.False(t, errs.HasErrors())
	assert.Empty(t, errs.Error())
	assert.Nil(t, errs.Fields())
	assert.Nil(t, errs.Messages())

	combined := NewValidationError("database", "required", "database is a required field")
	combined.Append(nil)
	combined.Append(NewValidationError("collection", "required", "collection is a required field"))
	assert.Equal(t, []string{"database", "collection"}, combined.Fields())
}
