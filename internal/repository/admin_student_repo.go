package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/rgpv-tpo/placement-api/internal/models"
)

// AdminStudentFilter defines the optional, AND-combined filters for listing
// students from the admin panel. A zero PageSize disables pagination, which
// the export path relies on.
type AdminStudentFilter struct {
	EnrollmentNo      string
	Department        string
	Name              string
	MinCGPA           *float64
	MinTenthPercent   *float64
	MinTwelfthPercent *float64
	Sort              string
	Page              int
	PageSize          int
}

// StudentWithCafStatus is the joined projection of a student and the status
// of their CAF, if any.
type StudentWithCafStatus struct {
	models.Student
	CafStatus *string
}

// AdminStudentRepository exposes persistence helpers for admin student
// operations.
type AdminStudentRepository interface {
	List(ctx context.Context, filter AdminStudentFilter) ([]StudentWithCafStatus, int64, error)
}

type adminStudentRepository struct {
	db *gorm.DB
}

// NewAdminStudentRepository constructs the admin student repository.
func NewAdminStudentRepository(db *gorm.DB) AdminStudentRepository {
	return &adminStudentRepository{db: db}
}

func (r *adminStudentRepository) List(ctx context.Context, filter AdminStudentFilter) ([]StudentWithCafStatus, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).
		Select("students.*, cafs.status AS caf_status").
		Joins("LEFT JOIN cafs ON cafs.student_id = students.id")

	if filter.EnrollmentNo != "" {
		query = query.Where("students.enrollment_no LIKE ?", filter.EnrollmentNo+"%")
	}
	if filter.Department != "" {
		query = query.Where("students.branch = ?", filter.Department)
	}
	if filter.Name != "" {
		like := "%" + strings.ToLower(filter.Name) + "%"
		query = query.Where("LOWER(students.full_name) LIKE ?", like)
	}
	if filter.MinCGPA != nil {
		query = query.Where("students.current_cgpa >= ?", *filter.MinCGPA)
	}
	if filter.MinTenthPercent != nil {
		query = query.Where("students.tenth_percent >= ?", *filter.MinTenthPercent)
	}
	if filter.MinTwelfthPercent != nil {
		query = query.Where("students.twelfth_percent >= ?", *filter.MinTwelfthPercent)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(sortExpression(filter.Sort))

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var rows []StudentWithCafStatus
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// sortExpression maps the exposed sort keys onto column expressions. Unknown
// keys fall back to the enrollment order.
func sortExpression(key string) string {
	switch key {
	case "name":
		return "students.full_name ASC"
	case "cgpa":
		return "students.current_cgpa DESC"
	case "cgpa_asc":
		return "students.current_cgpa ASC"
	default:
		return "students.enrollment_no ASC"
	}
}
