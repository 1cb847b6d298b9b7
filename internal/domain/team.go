package domain

type Team struct {
	TeamID int    `json:"TeamId"`
	Name   string `json:"Name"`
}
