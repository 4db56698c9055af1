package control

// Algorithm decides where the boat goes. Update runs once per control tick
// with the time elapsed since the previous one.
type Algorithm interface {
	Update(dt float64) error
	Info() Info
}

// Info describes the running algorithm for logs and the API.
type Info struct {
	Algorithm string                 `json:"algorithm" msgpack:"algorithm"`
	State     map[string]interface{} `json:"state,omitempty" msgpack:"state,omitempty"`
}
