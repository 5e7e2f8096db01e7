package entities

// User holds the credentials and identity of an account.
type User struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"type:varchar(30);uniqueIndex;not null"`
	Password string `gorm:"type:varchar(255);not null"`
}

func (User) TableName() string {
	return "users"
}
