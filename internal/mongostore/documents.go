package mongostore

import (
	"fmt"
	"time"

	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names shared with the check-in app.
const (
	fingerprintCollection = "userDetails"
	officeCollection      = "officeDetails"
	attendanceCollection  = "attendanceDetails"
)

type fingerprintDoc struct {
	UserID       string    `bson:"userid,omitempty"`
	OSName       string    `bson:"osName"`
	OSVersion    string    `bson:"osVersion"`
	Brand        string    `bson:"brand"`
	Model        string    `bson:"model"`
	Manufacturer string    `bson:"manufacturer"`
	CreatedAt    time.Time `bson:"createdAt,omitempty"`
}

func (d fingerprintDoc) toDomain() *domain.DeviceFingerprint {
	return &domain.DeviceFingerprint{
		UserID: d.UserID,
		Device: domain.Descriptor{
			OSName:       d.OSName,
			OSVersion:    d.OSVersion,
			Brand:        d.Brand,
			Model:        d.Model,
			Manufacturer: d.Manufacturer,
		},
		CreatedAt: d.CreatedAt,
	}
}

type officeDoc struct {
	ID        interface{} `bson:"_id"`
	Name      string      `bson:"name,omitempty"`
	Latitude  float64     `bson:"latitude"`
	Longitude float64     `bson:"longitude"`
}

func (d officeDoc) toDomain() domain.Office {
	return domain.Office{
		ID:   formatID(d.ID),
		Name: d.Name,
		Point: domain.Point{
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
		},
	}
}

// officeFromRaw decodes an officeDetails document and keeps its raw bytes.
func officeFromRaw(raw bson.Raw) (domain.Office, error) {
	var d officeDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		return domain.Office{}, err
	}
	office := d.toDomain()
	office.Document = append([]byte(nil), raw...)
	return office, nil
}

type embeddedOfficeDoc struct {
	ID        string  `bson:"_id"`
	Name      string  `bson:"name,omitempty"`
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
}

// officeDetails is the stored office document when there is one, so the
// original _id type and any extra fields survive.
func officeDetails(o domain.Office) interface{} {
	if len(o.Document) > 0 {
		if raw := bson.Raw(o.Document); raw.Validate() == nil {
			return raw
		}
	}
	return embeddedOfficeDoc{
		ID:        o.ID,
		Name:      o.Name,
		Latitude:  o.Point.Latitude,
		Longitude: o.Point.Longitude,
	}
}

// newAttendanceDoc starts from every field of the check-in payload and sets
// the normalised fields, date, time and office on top.
func newAttendanceDoc(rec *domain.AttendanceRecord) bson.M {
	doc := bson.M{}
	if len(rec.RawPayload) > 0 {
		if err := bson.UnmarshalExtJSON(rec.RawPayload, false, &doc); err != nil {
			doc = bson.M{}
		}
	}

	doc["userid"] = rec.UserID
	doc["latitude"] = rec.Point.Latitude
	doc["longitude"] = rec.Point.Longitude
	doc["osName"] = rec.Device.OSName
	doc["osVersion"] = rec.Device.OSVersion
	doc["brand"] = rec.Device.Brand
	doc["model"] = rec.Device.Model
	doc["manufacturer"] = rec.Device.Manufacturer
	doc["date"] = rec.Date
	doc["time"] = rec.Time
	doc["officeDetails"] = officeDetails(rec.Office)
	doc["recordedAt"] = rec.RecordedAt

	return doc
}

func formatID(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
