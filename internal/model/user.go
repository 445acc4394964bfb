package model

// User mirrors the /api/usuarios resource. HashSenha carries the password on
// register/login/update and is never echoed back by the server.
type User struct {
	ID        int64  `json:"id,omitempty"`
	Nome      string `json:"nome"`
	Telefone  string `json:"telefone"`
	CPF       string `json:"cpf,omitempty"`
	Email     string `json:"email"`
	HashSenha string `json:"hash_senha,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Email     string `json:"email"`
	HashSenha string `json:"hash_senha"`
}
