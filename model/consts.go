package model

// 字段类型枚举，与 fields.field_type 列一致
const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeNumber   = "number"
	FieldTypeDate     = "date"
	FieldTypeTime     = "time"
	FieldTypeCheckbox = "checkbox"
	FieldTypeDropdown = "dropdown"
	FieldTypeRadio    = "radio"
)

var fieldTypes = map[string]bool{
	FieldTypeText:     true,
	FieldTypeTextarea: true,
	FieldTypeNumber:   true,
	FieldTypeDate:     true,
	FieldTypeTime:     true,
	FieldTypeCheckbox: true,
	FieldTypeDropdown: true,
	FieldTypeRadio:    true,
}

// 选择类字段才允许携带 field_options
var choiceFieldTypes = map[string]bool{
	FieldTypeCheckbox: true,
	FieldTypeDropdown: true,
	FieldTypeRadio:    true,
}

func IsValidFieldType(t string) bool { return fieldTypes[t] }

func IsChoiceFieldType(t string) bool { return choiceFieldTypes[t] }

// ProjectCodeLength 公开项目码长度，学生凭此访问项目
const ProjectCodeLength = 8
