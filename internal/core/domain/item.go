package domain

import "time"

// IntegrationItem is the common shape every connector produces for a remote record.
type IntegrationItem struct {
	ID               *string    `json:"id"`
	Type             string     `json:"type"`
	Name             string     `json:"name"`
	CreationTime     *time.Time `json:"creation_time"`
	LastModifiedTime *time.Time `json:"last_modified_time"`
	Directory        bool       `json:"directory"`
}

