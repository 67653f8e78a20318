package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// registerCustomTranslations registers translations for custom validation rules.
func (v *Validator) registerCustomTranslations() {
	if enTrans := v.GetTranslator(LangEN); enTrans != nil {
		v.registerTranslations(enTrans, map[string]string{
			TagDatabaseName:   "{0} must be a valid MongoDB database name",
			TagCollectionName: "{0} must be a valid MongoDB collection name",
		})
	}

	if zhTrans := v.GetTranslator(LangZH); zhTrans != nil {
		v.registerTranslations(zhTrans, map[string]string{
			TagDatabaseName:   "{0}必须是有效的MongoDB数据库名称",
			TagCollectionName: "{0}必须是有效的MongoDB集合名称",
		})
	}
}

func (v *Validator) registerTranslations(trans ut.Translator, translations map[string]string) {
	for tag, message := range translations {
		registerTranslation(v.validate, trans, tag, message)
	}
}

// registerTranslation registers a single translation.
func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, message string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}
