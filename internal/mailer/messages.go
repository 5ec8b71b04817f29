package mailer

import "fmt"

// WelcomeMessage greets a newly registered user.
func WelcomeMessage(email, name string) Message {
	return Message{
		To:      email,
		Subject: "Welcome to Task Manager",
		Body:    fmt.Sprintf("Welcome to Task Manager, %s. We hope it helps you get things done.", name),
	}
}

// FarewellMessage is sent after a user deletes their account.
func FarewellMessage(email, name string) Message {
	return Message{
		To:      email,
		Subject: "Sorry to see you go",
		Body: fmt.Sprintf(
			"Your account has been deleted, %s. If there is anything we could have done better, please let us know.",
			name,
		),
	}
}
