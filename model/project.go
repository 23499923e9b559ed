package model

type Project struct {
	ProjectID           int    `json:"project_id"`
	TeacherID           int    `json:"teacher_id"`
	ProjectCode         string `json:"project_code"`
	ProjectTitle        string `json:"project_title"`
	ProjectDescription  string `json:"project_description"`
	ProjectInstructions string `json:"project_instructions"`
	CreateTime          string `json:"create_time,omitempty"`
}

// CreateProjectRequest 指针字段用于区分"缺失"和"空串"
type CreateProjectRequest struct {
	TeacherID           *int    `json:"teacher_id"`
	ProjectTitle        *string `json:"project_title"`
	ProjectDescription  *string `json:"project_description"`
	ProjectInstructions *string `json:"project_instructions"`
}

// ProjectUpdate 部分更新，nil 字段保持原值
type ProjectUpdate struct {
	ProjectTitle        *string `json:"project_title"`
	ProjectDescription  *string `json:"project_description"`
	ProjectInstructions *string `json:"project_instructions"`
}

// StudentProject 学生侧视图，刻意不含 teacher_id
type StudentProject struct {
	ProjectID           int    `json:"project_id"`
	ProjectCode         string `json:"project_code"`
	ProjectTitle        string `json:"project_title"`
	ProjectDescription  string `json:"project_description"`
	ProjectInstructions string `json:"project_instructions"`
}
