package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type WelcomeMailData struct {
	FullName string `json:"fullName"`
	UserType Role   `json:"userType"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type PlanAssignedMailData struct {
	FullName  string        `json:"fullName"`
	PlanTitle string        `json:"planTitle"`
	Status    FitnessStatus `json:"status"`
}
