package models

type HotspotUserRequest struct {
	Username    string `json:"username" validate:"required,max=64"`
	Password    string `json:"password" validate:"required,max=64"`
	PackageType string `json:"package_type" validate:"required"`
}

type HotspotUserResponse struct {
	Username string `json:"username"`
	Profile  string `json:"profile"`
	Created  bool   `json:"created"`
}
