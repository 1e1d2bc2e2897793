package service

import (
	"github.com/rgpv-tpo/placement-api/internal/dto"
	"github.com/rgpv-tpo/placement-api/internal/models"
)

// GateForStatus computes which feature areas a CAF status unlocks. Everything
// opens on approval and only on approval; a pending edit request does not
// relock anything. The gate is recomputed on every check, never cached.
func GateForStatus(status models.CafStatus) dto.AccessGateResponse {
	unlocked := status == models.CafStatusApproved
	return dto.AccessGateResponse{
		Internships:    unlocked,
		Placements:     unlocked,
		MockInterviews: unlocked,
	}
}
