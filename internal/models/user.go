package models

// User represents a registered account in the users table.
// Password holds whatever the configured password policy stores; with the
// default policy that is the plaintext value.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string `json:"name" gorm:"type:text;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password string `json:"-" gorm:"type:text;not null"` // No json tag for security
}

// TableName pins the table name so the postgres and sqlite drivers agree.
func (User) TableName() string {
	return "users"
}
