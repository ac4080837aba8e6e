package markset

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"markbook/internal/shared"
)

// ============================================================================
// Class & Roster Administration
// ============================================================================
// These operations own the lifecycle of classes, mark sets, students, and
// assessments. The grid client only ever reads them.

// CreateClassRequest carries the fields for a new class
type CreateClassRequest struct {
	Name      string `json:"name"`
	Term      string `json:"term"`
	TeacherID string `json:"teacher_id,omitempty"`
}

// CreateClass creates a new class and returns it.
func (s *Service) CreateClass(ctx context.Context, req CreateClassRequest) (*shared.Class, error) {
	if req.Name == "" || req.Term == "" {
		return nil, status.Error(codes.InvalidArgument, "name and term are required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	class := shared.Class{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Term:      req.Term,
		TeacherID: req.TeacherID,
		CreatedAt: time.Now(),
	}

	if _, err := s.classesCol.InsertOne(queryCtx, class); err != nil {
		return nil, status.Error(codes.Internal, "failed to create class")
	}

	return &class, nil
}

// CreateMarkSetRequest carries the fields for a new mark set
type CreateMarkSetRequest struct {
	Name string `json:"name"`
}

// CreateMarkSet creates a new (empty) mark set inside a class.
func (s *Service) CreateMarkSet(ctx context.Context, classID string, req CreateMarkSetRequest) (*shared.MarkSet, error) {
	if classID == "" || req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "class_id and name are required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.validateClass(queryCtx, classID); err != nil {
		return nil, err
	}

	markSet := shared.MarkSet{
		ID:        uuid.NewString(),
		ClassID:   classID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if _, err := s.markSetsCol.InsertOne(queryCtx, markSet); err != nil {
		return nil, status.Error(codes.Internal, "failed to create mark set")
	}

	return &markSet, nil
}

// AddStudentRequest carries the fields for a new roster entry
type AddStudentRequest struct {
	DisplayName string `json:"display_name"`
	SortOrder   int32  `json:"sort_order"`
}

// AddStudent appends a student to a class roster.
func (s *Service) AddStudent(ctx context.Context, classID string, req AddStudentRequest) (*shared.Student, error) {
	if classID == "" || req.DisplayName == "" {
		return nil, status.Error(codes.InvalidArgument, "class_id and display_name are required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.validateClass(queryCtx, classID); err != nil {
		return nil, err
	}

	student := shared.Student{
		ID:          uuid.NewString(),
		ClassID:     classID,
		DisplayName: req.DisplayName,
		SortOrder:   req.SortOrder,
		Active:      true,
		CreatedAt:   time.Now(),
	}

	if _, err := s.studentsCol.InsertOne(queryCtx, student); err != nil {
		return nil, status.Error(codes.Internal, "failed to add student")
	}

	return &student, nil
}

// AddAssessmentRequest carries the fields for a new scored column
type AddAssessmentRequest struct {
	Idx          int32     `json:"idx"`
	Date         time.Time `json:"date"`
	CategoryName string    `json:"category_name"`
	Title        string    `json:"title"`
	Weight       float64   `json:"weight"`
	OutOf        float64   `json:"out_of"`
}

// AddAssessment appends a scored column to a mark set.
func (s *Service) AddAssessment(ctx context.Context, classID, markSetID string, req AddAssessmentRequest) (*shared.Assessment, error) {
	if classID == "" || markSetID == "" || req.Title == "" {
		return nil, status.Error(codes.InvalidArgument, "class_id, mark_set_id, and title are required")
	}
	if req.OutOf <= 0 {
		return nil, status.Error(codes.InvalidArgument, "out_of must be positive")
	}
	if req.Weight < 0 {
		return nil, status.Error(codes.InvalidArgument, "weight must be non-negative")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.validateMarkSet(queryCtx, classID, markSetID); err != nil {
		return nil, err
	}

	assessment := shared.Assessment{
		ID:           uuid.NewString(),
		MarkSetID:    markSetID,
		Idx:          req.Idx,
		Date:         req.Date,
		CategoryName: req.CategoryName,
		Title:        req.Title,
		Weight:       req.Weight,
		OutOf:        req.OutOf,
		CreatedAt:    time.Now(),
	}

	if _, err := s.assessmentsCol.InsertOne(queryCtx, assessment); err != nil {
		return nil, status.Error(codes.Internal, "failed to add assessment")
	}

	return &assessment, nil
}

func (s *Service) validateClass(ctx context.Context, classID string) error {
	err := s.classesCol.FindOne(ctx, bson.M{"_id": classID}).Err()
	if err == mongo.ErrNoDocuments {
		return status.Errorf(codes.NotFound, "class %s not found", classID)
	}
	if err != nil {
		return status.Error(codes.Internal, "failed to retrieve class")
	}
	return nil
}
