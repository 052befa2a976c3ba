package model

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for admin passwords.
const PasswordCost = 10

// Admin is the administrator credential. The hash is stored but never rendered.
type Admin struct {
	Base         `bson:",inline"`
	Username     string `bson:"username" json:"username"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password" json:"-"`
}

// SetPassword hashes and stores password.
func (a *Admin) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// ComparePassword reports whether password matches the stored hash.
func (a *Admin) ComparePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
