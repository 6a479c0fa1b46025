package auth

import (
	"time"

	"github.com/uleam/vehicle-gate/internal/rbac"
)

// Status flags whether an account may sign in.
type Status string

// Account states as persisted in profile storage.
const (
	StatusActive   Status = "Activo"
	StatusInactive Status = "Inactivo"
)

// User represents an account persisted under the users key.
type User struct {
	ID         int64      `json:"id"`
	NationalID string     `json:"cedula"`
	Name       string     `json:"nombre"`
	Email      string     `json:"email"`
	Username   string     `json:"usuario"`
	SecretHash string     `json:"passwordHash"`
	Role       rbac.Role  `json:"rol"`
	Status     Status     `json:"estado"`
	LastLogin  *time.Time `json:"lastLogin"`
}

// IsActive reports whether the account may sign in.
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// Session is the snapshot taken at login. Permissions are resolved once and
// never re-joined against the role table.
type Session struct {
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"`
	Role        rbac.Role `json:"role"`
	Permissions []string  `json:"permissions"`
	LastLogin   time.Time `json:"lastLogin"`
	Timestamp   int64     `json:"timestamp"`
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Permissions = append([]string(nil), s.Permissions...)
	return &out
}

// Severity tags a notification.
type Severity string

// Notification severities.
const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is the transient banner shown to the profile.
type Notification struct {
	Visible  bool     `json:"show"`
	Message  string   `json:"message"`
	Severity Severity `json:"type"`
}

// Vehicle is only used to seed storage; the gate treats it as opaque.
type Vehicle struct {
	ID          int64  `json:"id"`
	Plate       string `json:"placa"`
	Owner       string `json:"propietario"`
	DriverID    string `json:"idConductor"`
	UserType    string `json:"tipoUsuario"`
	VehicleType string `json:"tipoVehiculo"`
	Status      string `json:"estado"`
}
