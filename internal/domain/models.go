package domain

import "time"

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Descriptor identifies the device a check-in was reported from.
type Descriptor struct {
	OSName       string `json:"osName" bson:"osName"`
	OSVersion    string `json:"osVersion" bson:"osVersion"`
	Brand        string `json:"brand" bson:"brand"`
	Model        string `json:"model" bson:"model"`
	Manufacturer string `json:"manufacturer" bson:"manufacturer"`
}

// Equal reports whether all five descriptor fields match exactly.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.OSName == other.OSName &&
		d.OSVersion == other.OSVersion &&
		d.Brand == other.Brand &&
		d.Model == other.Model &&
		d.Manufacturer == other.Manufacturer
}

// CheckInEvent is a parsed queue message. It only lives for one delivery.
type CheckInEvent struct {
	UserID string
	Point  Point
	Device Descriptor
	// Raw is the original message body.
	Raw []byte
}

// DeviceFingerprint is the registered device of a user.
type DeviceFingerprint struct {
	UserID    string
	Device    Descriptor
	CreatedAt time.Time
}

// Office is a registered office location.
type Office struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Point Point  `json:"point"`
	// Document is the stored office as read from a document store, when the
	// backend keeps one. It is embedded as-is into attendance records.
	Document []byte `json:"document,omitempty"`
}

// AttendanceRecord is what gets persisted for an accepted check-in.
type AttendanceRecord struct {
	ID         string
	UserID     string
	Point      Point
	Device     Descriptor
	Date       string // YYYY-MM-DD, UTC
	Time       string // HH:MM:SS, UTC
	Office     Office
	RecordedAt time.Time
	RawPayload []byte
}
