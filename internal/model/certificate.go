package model

// Certificate 用户上传的证书元数据，文件本体在对象存储中
type Certificate struct {
	BaseModel
	UserID       uint   `gorm:"index;not null" json:"userId"`
	Title        string `gorm:"size:150;not null" json:"title"`
	OriginalName string `gorm:"size:255" json:"originalName"`
	StoredKey    string `gorm:"size:255;not null" json:"-"`
	URL          string `gorm:"size:512" json:"url"`
	MimeType     string `gorm:"size:100" json:"mimeType"`
	Size         int64  `json:"size"`
	ThumbnailKey string `gorm:"size:255" json:"-"`
	ThumbnailURL string `gorm:"size:512" json:"thumbnailUrl,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}
