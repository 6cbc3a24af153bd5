// Package models maps the Nautobot tables touched by the sync onto gorm models.
package models
