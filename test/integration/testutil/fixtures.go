package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixtures seed the platform-owned collections (reservations, properties,
// guests) that the services only read, plus message templates. Documents go
// straight into Mongo because no API creates them.

type PropertyFixture struct {
	Name       string
	Address    string
	TimeZone   string
	HostName   string
	HostPhone  string
	AccessMode string
	DeviceIDs  []string
	Fallback   string
}

func DefaultProperty() PropertyFixture {
	return PropertyFixture{
		Name:       "Seaside Loft",
		Address:    "12 Harbor Lane",
		TimeZone:   "UTC",
		HostName:   "Avi Host",
		HostPhone:  "+972501234567",
		AccessMode: "manual",
	}
}

func (f PropertyFixture) Insert(t *testing.T, m *MongoHelper) string {
	t.Helper()

	access := bson.M{"mode": f.AccessMode}
	if len(f.DeviceIDs) > 0 {
		access["device_ids"] = f.DeviceIDs
	}
	if f.Fallback != "" {
		access["fallback_instructions"] = f.Fallback
	}

	return insertDoc(t, m, PropertiesCollection, bson.M{
		"name":       f.Name,
		"address":    f.Address,
		"time_zone":  f.TimeZone,
		"host_name":  f.HostName,
		"host_phone": f.HostPhone,
		"access":     access,
		"created_at": time.Now().UTC(),
	})
}

type ReservationFixture struct {
	PropertyID string
	GuestID    string
	GuestName  string
	CheckIn    time.Time
	CheckOut   time.Time
	Status     string
}

func DefaultReservation(propertyID string) ReservationFixture {
	now := time.Now().UTC().Truncate(time.Second)
	return ReservationFixture{
		PropertyID: propertyID,
		GuestName:  "Dana Guest",
		CheckIn:    now.Add(2 * time.Hour),
		CheckOut:   now.Add(50 * time.Hour),
		Status:     "confirmed",
	}
}

func (f ReservationFixture) Insert(t *testing.T, m *MongoHelper) string {
	t.Helper()

	doc := bson.M{
		"property_id": f.PropertyID,
		"guest_name":  f.GuestName,
		"check_in":    f.CheckIn,
		"check_out":   f.CheckOut,
		"status":      f.Status,
		"created_at":  time.Now().UTC(),
	}
	if f.GuestID != "" {
		doc["guest_id"] = f.GuestID
	}
	return insertDoc(t, m, ReservationsCollection, doc)
}

type GuestFixture struct {
	ReservationID string
	FullName      string
	Phone         string
	Email         string
}

func (f GuestFixture) Insert(t *testing.T, m *MongoHelper) string {
	t.Helper()

	return insertDoc(t, m, GuestsCollection, bson.M{
		"reservation_id": f.ReservationID,
		"full_name":      f.FullName,
		"phone":          f.Phone,
		"email":          f.Email,
		"created_at":     time.Now().UTC(),
	})
}

type TemplateFixture struct {
	Name            string
	Content         string
	Channels        []string
	TriggerEvent    string
	OffsetValue     int
	OffsetUnit      string
	OffsetDirection string
	Active          bool
}

func CheckOutReminderTemplate() TemplateFixture {
	return TemplateFixture{
		Name:            "Checkout reminder",
		Content:         "See you soon, {{guest_name}}! Checkout is at {{check_out_time}}.",
		Channels:        []string{"sms"},
		TriggerEvent:    "check_out",
		OffsetValue:     2,
		OffsetUnit:      "hours",
		OffsetDirection: "before",
		Active:          true,
	}
}

func (f TemplateFixture) Insert(t *testing.T, m *MongoHelper) string {
	t.Helper()

	return insertDoc(t, m, MessageTemplatesCollection, bson.M{
		"name":          f.Name,
		"content":       f.Content,
		"channels":      f.Channels,
		"trigger_event": f.TriggerEvent,
		"offset": bson.M{
			"value":     f.OffsetValue,
			"unit":      f.OffsetUnit,
			"direction": f.OffsetDirection,
		},
		"active":     f.Active,
		"created_at": time.Now().UTC(),
	})
}

func insertDoc(t *testing.T, m *MongoHelper, collection string, doc bson.M) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := m.GetCollection(collection).InsertOne(ctx, doc)
	if err != nil {
		t.Fatalf("failed to insert %s fixture: %v", collection, err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		t.Fatalf("unexpected inserted id type %T", result.InsertedID)
	}
	return id.Hex()
}
