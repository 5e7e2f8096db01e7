package entities

// Tag names are stored lowercased; the unique index makes them unique
// irrespective of the case they were submitted in.
type Tag struct {
	ID      uint   `gorm:"primaryKey"`
	TagName string `gorm:"column:tag_name;type:varchar(25);uniqueIndex;not null"`
}

func (Tag) TableName() string {
	return "tags"
}
