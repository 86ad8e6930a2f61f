package account

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	parentRequiredTag  = "parentrequired"
	parentRequiredText = "{0} is required for students under 18"
)

// InitValidators registers the account validators. It must run after core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newStudentStructValidation, NewStudent{})
	core.RegisterCustomTranslation(validate, translator, parentRequiredTag, parentRequiredText)
}

// newStudentStructValidation requires the parent's name and contact for minors.
func newStudentStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewStudent)
	if !ok || ns.Age >= AdultAge {
		return
	}
	if ns.ParentName == "" {
		sl.ReportError(ns.ParentName, "parent_name", "ParentName", parentRequiredTag, "")
	}
	if ns.ParentContact == "" {
		sl.ReportError(ns.ParentContact, "parent_contact", "ParentContact", parentRequiredTag, "")
	}
}
