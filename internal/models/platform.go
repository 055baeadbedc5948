package models

// PlatformModel is a publication (site) served by the CMS.
type PlatformModel struct {
	PlatformID   int    `json:"platform_id"   gorm:"column:platform_id;primaryKey;autoIncrement:false"`
	PlatformName string `json:"platform_name"`
	PlatformDesc string `json:"platform_desc" gorm:"type:text"`
	LogoURL      string `json:"logo_url"`
	Timestamps
}

func (PlatformModel) TableName() string { return "platforms" }

// PlatformAccessModel grants a user access to a platform.
type PlatformAccessModel struct {
	ID         uint           `json:"id"                 gorm:"primaryKey"`
	UserID     uint           `json:"user_id"            gorm:"uniqueIndex:idx_platform_access,priority:1;not null"`
	PlatformID int            `json:"platform_id"        gorm:"uniqueIndex:idx_platform_access,priority:2;not null"`
	User       *UserModel     `json:"user,omitempty"     gorm:"foreignKey:UserID;references:UserID"`
	Platform   *PlatformModel `json:"platform,omitempty" gorm:"foreignKey:PlatformID;references:PlatformID"`
	Timestamps
}

func (PlatformAccessModel) TableName() string { return "platform_access" }
