package model

// Guest is the engine's read-only view of a guest list record.  The
// Guest List collaborator owns these; the seating engine only consumes
// them through the guestlist contract.
//
// Fields:
//  ID         – guest identifier assigned by the Guest List module.
//  WeddingID  – wedding the guest belongs to.
//  Name       – display name.
//  GroupID    – declared group (family, friends of the bride, ...);
//               used by auto-assignment affinity scoring.
//  NearStage  – preference flag: seat close to the stage.
//  NearDance  – preference flag: seat close to the dance floor.
type Guest struct {
	ID        string `json:"id"`
	WeddingID string `json:"wedding_id"`
	Name      string `json:"name"`
	GroupID   string `json:"group_id"`
	NearStage bool   `json:"near_stage"`
	NearDance bool   `json:"near_dance"`
}

// GuestAssignment is the Guest List's projection of a seat binding.
// The seating engine treats it as a remote replica that must
// eventually agree with the spatial model, which is the source of
// truth on conflict.
type GuestAssignment struct {
	GuestID   string `json:"guest_id"`
	TableID   string `json:"table_id"`
	TableName string `json:"table_name"`
	SeatIndex int    `json:"seat_index"`
}

// AssignmentPush is one outbound reconciliation message: the new
// assignment for a guest, or nil Assignment when the guest was freed.
type AssignmentPush struct {
	WeddingID  string           `json:"wedding_id"`
	GuestID    string           `json:"guest_id"`
	Assignment *GuestAssignment `json:"assignment"`
}
