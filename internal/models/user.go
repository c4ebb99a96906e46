package models

// User is a shadow copy of the identity service's user record, keyed by
// email. It exists so the storage layer can enforce referential integrity
// for friendships and requests; the identity service remains the owner.
type User struct {
	Email string `gorm:"primaryKey;type:varchar(255)" json:"email"`
	Name  string `gorm:"type:varchar(255)" json:"name"`
}
