package model

type Observation struct {
	ObservationID int                `json:"observation_id"`
	ProjectID     int                `json:"project_id"`
	StudentName   string             `json:"student_name,omitempty"`
	CreateTime    string             `json:"create_time,omitempty"`
	FieldValues   []ObservationValue `json:"field_values"`
}

// ObservationValue 一条观测值，附带字段元数据方便前端直接渲染
type ObservationValue struct {
	DataID     int    `json:"data_id,omitempty"`
	FieldID    int    `json:"field_id"`
	FieldName  string `json:"field_name,omitempty"`
	FieldLabel string `json:"field_label,omitempty"`
	FieldValue string `json:"field_value"`
}

// ObservationUpdate 部分更新：student_name 与按 field_id 覆盖的值
type ObservationUpdate struct {
	StudentName *string        `json:"student_name"`
	FieldData   map[int]string `json:"-"`
}
