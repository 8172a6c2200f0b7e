package database

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var dateType = reflect.TypeOf(civil.Date{})

var (
	registryOnce sync.Once
	registry     *bsoncodec.Registry
)

// Registry returns the default BSON registry extended so civil.Date values
// are stored as "YYYY-MM-DD" strings. String dates sort and compare
// correctly in range filters and carry no time zone.
func Registry() *bsoncodec.Registry {
	registryOnce.Do(func() {
		registry = bson.NewRegistry()
		registry.RegisterTypeEncoder(dateType, bsoncodec.ValueEncoderFunc(encodeDate))
		registry.RegisterTypeDecoder(dateType, bsoncodec.ValueDecoderFunc(decodeDate))
	})
	return registry
}

func encodeDate(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != dateType {
		return bsoncodec.ValueEncoderError{Name: "encodeDate", Types: []reflect.Type{dateType}, Received: val}
	}
	d := val.Interface().(civil.Date)
	if d == (civil.Date{}) {
		return vw.WriteNull()
	}
	return vw.WriteString(d.String())
}

func decodeDate(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != dateType {
		return bsoncodec.ValueDecoderError{Name: "decodeDate", Types: []reflect.Type{dateType}, Received: val}
	}

	var d civil.Date
	switch vr.Type() {
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		if d, err = civil.ParseDate(s); err != nil {
			return fmt.Errorf("invalid stored date %q: %w", s, err)
		}
	case bsontype.DateTime:
		ms, err := vr.ReadDateTime()
		if err != nil {
			return err
		}
		d = civil.DateOf(time.UnixMilli(ms).UTC())
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode %v into civil.Date", vr.Type())
	}

	val.Set(reflect.ValueOf(d))
	return nil
}
