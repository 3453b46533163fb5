package domain

import "time"

type User struct {
	ID                   string
	Email                string
	PasswordHash         string
	FirstName            string
	LastName             string
	IsAdmin              bool
	ResetPasswordToken   *string
	ResetPasswordExpires *time.Time
}
