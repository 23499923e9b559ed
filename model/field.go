package model

type Field struct {
	FieldID       int      `json:"field_id"`
	ProjectID     int      `json:"project_id"`
	FieldName     string   `json:"field_name"`
	FieldLabel    string   `json:"field_label"`
	FieldType     string   `json:"field_type"`
	FieldOptions  []string `json:"field_options"` // 仅选择类字段使用，库内为 JSON 数组
	FieldRequired bool     `json:"field_required"`
	FieldOrder    int      `json:"field_order"`
}

type CreateFieldRequest struct {
	FieldName     *string  `json:"field_name"`
	FieldLabel    string   `json:"field_label"`
	FieldType     *string  `json:"field_type"`
	FieldOptions  []string `json:"field_options"`
	FieldRequired bool     `json:"field_required"`
}

// FieldUpdate 部分更新，nil 字段保持原值
type FieldUpdate struct {
	FieldName     *string   `json:"field_name"`
	FieldLabel    *string   `json:"field_label"`
	FieldType     *string   `json:"field_type"`
	FieldOptions  *[]string `json:"field_options"`
	FieldRequired *bool     `json:"field_required"`
}
