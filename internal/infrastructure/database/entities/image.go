package entities

import "time"

// Image represents the persisted image metadata. Dimensions and size always
// describe the stored, transcoded bytes rather than the original upload.
type Image struct {
	ID       uint      `gorm:"primaryKey"`
	Title    string    `gorm:"type:varchar(60);not null"`
	Key      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	MimeType string    `gorm:"column:mime_type;type:varchar(64);not null"`
	Width    int       `gorm:"not null"`
	Height   int       `gorm:"not null"`
	FileSize int64     `gorm:"column:file_size;not null"`
	UserID   uint      `gorm:"column:user_id;not null;index"`
	User     User      `gorm:"foreignKey:UserID"`
	UploadAt time.Time `gorm:"column:upload_at;type:timestamptz(3);autoCreateTime"`
}

func (Image) TableName() string {
	return "images"
}

// ImageTag links one image to one tag. The composite primary key prevents the
// same pair from being linked twice.
type ImageTag struct {
	ImageID uint  `gorm:"column:image_id;primaryKey"`
	TagID   uint  `gorm:"column:tag_id;primaryKey"`
	Image   Image `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE"`
	Tag     Tag   `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

func (ImageTag) TableName() string {
	return "image_tags"
}
