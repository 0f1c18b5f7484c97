package api

import (
	"github.com/your-org/faceattend/internal/models"
	"github.com/your-org/faceattend/pkg/dto"
)

// NoticeToWS converts a queue attendance notice into the WebSocket feed
// message.
func NoticeToWS(n *models.AttendanceNotice) *dto.WSNotice {
	return &dto.WSNotice{
		Type:               "attendance",
		EventID:            n.EventID,
		EmployeeID:         n.EmployeeID,
		EmployeeCode:       n.EmployeeCode,
		EmployeeName:       n.EmployeeName,
		Action:             n.Action,
		OccurredAt:         n.OccurredAt,
		CombinedScore:      n.CombinedScore,
		LivenessConfidence: n.LivenessConfidence,
	}
}
