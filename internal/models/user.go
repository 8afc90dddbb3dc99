package models

type User struct {
	ID       string `json:"id"`
	Login    string `json:"login"`
	PassHash []byte `json:"pass_hash"`
}

type ContextKey string

const UserContextKey ContextKey = "user"
