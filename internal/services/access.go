package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ccvida/reportes/internal/db"
	"github.com/ccvida/reportes/internal/models"
)

var (
	ErrBadAccessCode = errors.New("access code not recognized")
	ErrNotShared     = errors.New("report is not publicly shared")
)

// CellAccess is what a verified access code unlocks: the cell plus its
// leader and sector for display on the gated form.
type CellAccess struct {
	CellID     uint   `json:"cellId"`
	CellName   string `json:"cellName"`
	LeaderName string `json:"leaderName,omitempty"`
	SectorID   uint   `json:"sectorId"`
	SectorName string `json:"sectorName,omitempty"`
}

// VerifyCellAccess resolves a shared access code to its cell. There is
// no lockout: a wrong code is simply rejected and the caller may retry.
func VerifyCellAccess(code string) (*CellAccess, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrBadAccessCode
	}
	var cell models.Cell
	err := db.Conn().Preload("Leader").Preload("Sector").
		Where("access_code = ?", code).First(&cell).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadAccessCode
		}
		return nil, err
	}
	out := &CellAccess{
		CellID:     cell.ID,
		CellName:   cell.Name,
		SectorID:   cell.SectorID,
		SectorName: cell.Sector.Name,
	}
	if cell.Leader != nil {
		out.LeaderName = cell.Leader.Name
	}
	return out, nil
}

// EnableSharing assigns the report a public token (idempotent).
func EnableSharing(reportID uint) (string, error) {
	var rep models.Report
	if err := db.Conn().First(&rep, reportID).Error; err != nil {
		return "", err
	}
	if rep.ShareToken != nil && *rep.ShareToken != "" {
		return *rep.ShareToken, nil
	}
	token := uuid.NewString()
	rep.ShareToken = &token
	if err := db.Conn().Save(&rep).Error; err != nil {
		return "", err
	}
	return token, nil
}

// DisableSharing revokes the public token. Existing links stop working.
func DisableSharing(reportID uint) error {
	var rep models.Report
	if err := db.Conn().First(&rep, reportID).Error; err != nil {
		return err
	}
	rep.ShareToken = nil
	return db.Conn().Save(&rep).Error
}

// ReportByToken resolves a public share token, fields included.
func ReportByToken(token string) (*models.Report, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotShared
	}
	var rep models.Report
	err := db.Conn().Preload("Fields", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc, id asc")
	}).Where("share_token = ?", token).First(&rep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotShared
		}
		return nil, err
	}
	return &rep, nil
}

// PublicEntities lists the units a public filler can file against.
func PublicEntities() (cells []models.Cell, groups []models.Group, sectors []models.Sector, err error) {
	if err = db.Conn().Order("name asc").Find(&cells).Error; err != nil {
		return
	}
	if err = db.Conn().Order("name asc").Find(&groups).Error; err != nil {
		return
	}
	err = db.Conn().Order("name asc").Find(&sectors).Error
	return
}

// CellMembers returns the member roster used by MEMBER_SELECT and
// FRIEND_REGISTRATION fields of a cell-scoped form.
func CellMembers(cellID uint) ([]models.Member, error) {
	var members []models.Member
	err := db.Conn().Where("cell_id = ?", cellID).Order("name asc").Find(&members).Error
	return members, err
}
