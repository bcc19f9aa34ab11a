package values

import (
	"github.com/velograph/velograph/errors"
)

// Geometry is the external shape of a spatial object entering the value
// domain. Only point geometries are convertible.
type Geometry interface {
	GeometryType() string
	Coordinate() (x float64, y float64)
	CRSName() string
}

// Of converts an external object to a Value. The dispatch is a closed switch
// over the supported dynamic types; anything else is an UnsupportedValueType
// error, never a silent fallback.
func Of(object interface{}) (Value, error) {
	switch obj := object.(type) {
	case nil:
		return NullValue{}, nil
	case Value:
		return obj, nil
	case bool:
		return BoolValue(obj), nil
	case int:
		return Int64Value(obj), nil
	case int32:
		return Int64Value(obj), nil
	case int64:
		return Int64Value(obj), nil
	case float32:
		return Float64Value(obj), nil
	case float64:
		return Float64Value(obj), nil
	case string:
		return StringValue(obj), nil
	case []interface{}:
		list := make(ListValue, len(obj))
		for i, e := range obj {
			v, err := Of(e)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return list, nil
	case map[string]interface{}:
		m := make(MapValue, len(obj))
		for k, e := range obj {
			v, err := Of(e)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	case Geometry:
		return AsPointValue(obj)
	default:
		return nil, errors.NewUnsupportedValueTypeError(object)
	}
}

// AsPointValue converts a geometry to a point. Non-point geometry types and
// unrecognized reference systems are data errors surfaced to the caller.
func AsPointValue(geometry Geometry) (PointValue, error) {
	if geometry.GeometryType() != "Point" {
		return PointValue{}, errors.NewInvalidGeometryError(geometry.GeometryType())
	}
	x, y := geometry.Coordinate()
	switch geometry.CRSName() {
	case cartesianName:
		return NewPointCartesian(x, y), nil
	case wgs84Name:
		return NewPointGeographic(x, y), nil
	default:
		return PointValue{}, errors.NewInvalidCoordinateReferenceSystemError(geometry.CRSName())
	}
}

// AsListValue converts a slice of external objects to a list value.
func AsListValue(objects []interface{}) (ListValue, error) {
	v, err := Of(objects)
	if err != nil {
		return nil, err
	}
	return v.(ListValue), nil
}

// AsMapValue converts a map of external objects to a map value.
func AsMapValue(objects map[string]interface{}) (MapValue, error) {
	v, err := Of(objects)
	if err != nil {
		return nil, err
	}
	return v.(MapValue), nil
}
