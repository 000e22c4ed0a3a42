package model

// Units carries the two positive reals every GDSII library publishes via
// UNITS: the size of one DBU in user units, and the size of one user unit
// in meters. Polygon coordinates are always in DBU; micrometers and
// nanometers are derived for display only (spec.md §3).
type Units struct {
	DBUInUser    float64
	UserInMeters float64
}

// DefaultUnits matches the common GDSII convention of 1000 DBU per user
// unit and 1e-6 meters (1 micron) per user unit.
func DefaultUnits() Units {
	return Units{DBUInUser: 0.001, UserInMeters: 1e-6}
}

// MetersPerDBU returns the size of one DBU in meters.
func (u Units) MetersPerDBU() float64 {
	return u.DBUInUser * u.UserInMeters
}

// ToMicrons converts a DBU length to micrometers.
func (u Units) ToMicrons(dbu float64) float64 {
	return dbu * u.MetersPerDBU() * 1e6
}

// ToNanometers converts a DBU length to nanometers.
func (u Units) ToNanometers(dbu float64) float64 {
	return dbu * u.MetersPerDBU() * 1e9
}
