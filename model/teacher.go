package model

type Teacher struct {
	TeacherID  int    `json:"teacher_id"`
	Username   string `json:"username"`
	CreateTime string `json:"create_time,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
