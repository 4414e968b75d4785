package domain

import "time"

type SessionID string
type FieldID string
type UserID string

// AnonymousUser is the owner recorded for sessions created without a user.
const AnonymousUser UserID = "anonymous"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FieldKind discriminates the two field families the planner manages.
type FieldKind string

const (
	KindAgriculture FieldKind = "agriculture"
	KindGarden      FieldKind = "garden"
)

// AreaUnit is the unit of a field's Length/Width dimensions.
type AreaUnit string

const (
	UnitHectare     AreaUnit = "ha"
	UnitSquareMeter AreaUnit = "m²"
)

type Timestamp = time.Time
