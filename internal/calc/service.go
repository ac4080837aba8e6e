package calc

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"markbook/internal/shared"
)

// Service implements the calc collaborator: derived statistics over the
// committed score matrix. It reads the same collections the mark-set store
// writes and never mutates anything.
type Service struct {
	db             *mongo.Database
	markSetsCol    *mongo.Collection
	studentsCol    *mongo.Collection
	assessmentsCol *mongo.Collection
	scoresCol      *mongo.Collection
}

// NewService creates a new calc service instance
func NewService(db *mongo.Database) *Service {
	return &Service{
		db:             db,
		markSetsCol:    db.Collection("mark_sets"),
		studentsCol:    db.Collection("students"),
		assessmentsCol: db.Collection("assessments"),
		scoresCol:      db.Collection("scores"),
	}
}

// AssessmentStats computes per-assessment aggregates for a mark set,
// ordered by assessment idx.
func (s *Service) AssessmentStats(ctx context.Context, markSetID string) ([]shared.AssessmentStats, error) {
	grid, err := s.loadGrid(ctx, markSetID)
	if err != nil {
		return nil, err
	}

	results := make([]shared.AssessmentStats, 0, len(grid.assessments))
	for c, assessment := range grid.assessments {
		column := make([]*float64, len(grid.students))
		for r := range grid.students {
			column[r] = grid.cells[r][c]
		}
		results = append(results, columnStats(assessment, column))
	}

	return results, nil
}

// MarkSetSummary computes the weighted final mark for every student in a
// mark set, ordered by roster sort order.
func (s *Service) MarkSetSummary(ctx context.Context, markSetID string) ([]shared.StudentSummary, error) {
	grid, err := s.loadGrid(ctx, markSetID)
	if err != nil {
		return nil, err
	}

	results := make([]shared.StudentSummary, 0, len(grid.students))
	for r, student := range grid.students {
		results = append(results, shared.StudentSummary{
			StudentID: student.ID,
			SortOrder: student.SortOrder,
			FinalMark: finalMark(grid.assessments, grid.cells[r]),
		})
	}

	return results, nil
}

// ============================================================================
// Helper Functions
// ============================================================================

type loadedGrid struct {
	students    []shared.Student
	assessments []shared.Assessment
	cells       [][]*float64
}

// loadGrid materializes the full committed matrix for one mark set
func (s *Service) loadGrid(ctx context.Context, markSetID string) (*loadedGrid, error) {
	if markSetID == "" {
		return nil, status.Error(codes.InvalidArgument, "mark_set_id is required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var markSet shared.MarkSet
	if err := s.markSetsCol.FindOne(queryCtx, bson.M{"_id": markSetID}).Decode(&markSet); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, status.Errorf(codes.NotFound, "mark set %s not found", markSetID)
		}
		log.Printf("Error finding mark set %s: %v", markSetID, err)
		return nil, status.Error(codes.Internal, "failed to retrieve mark set")
	}

	students, err := s.loadStudents(queryCtx, markSet.ClassID)
	if err != nil {
		return nil, err
	}
	assessments, err := s.loadAssessments(queryCtx, markSetID)
	if err != nil {
		return nil, err
	}

	// Index stored scores by (student, assessment)
	cursor, err := s.scoresCol.Find(queryCtx, bson.M{"mark_set_id": markSetID})
	if err != nil {
		log.Printf("Error querying scores for mark set %s: %v", markSetID, err)
		return nil, status.Error(codes.Internal, "failed to retrieve scores")
	}
	defer cursor.Close(queryCtx)

	values := make(map[string]*float64)
	for cursor.Next(queryCtx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			continue
		}

		studentID, _ := shared.GetString(doc["student_id"])
		assessmentID, _ := shared.GetString(doc["assessment_id"])
		if studentID == "" || assessmentID == "" {
			continue
		}

		value, err := shared.GetNullableFloat64(doc["value"])
		if err != nil {
			continue
		}
		values[studentID+":"+assessmentID] = value
	}

	cells := make([][]*float64, len(students))
	for r, student := range students {
		cells[r] = make([]*float64, len(assessments))
		for c, assessment := range assessments {
			cells[r][c] = values[student.ID+":"+assessment.ID]
		}
	}

	return &loadedGrid{students: students, assessments: assessments, cells: cells}, nil
}

func (s *Service) loadStudents(ctx context.Context, classID string) ([]shared.Student, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.studentsCol.Find(ctx, bson.M{"class_id": classID}, findOptions)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to retrieve roster")
	}
	defer cursor.Close(ctx)

	var students []shared.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, status.Error(codes.Internal, "failed to decode roster")
	}
	return students, nil
}

func (s *Service) loadAssessments(ctx context.Context, markSetID string) ([]shared.Assessment, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "idx", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.assessmentsCol.Find(ctx, bson.M{"mark_set_id": markSetID}, findOptions)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to retrieve assessments")
	}
	defer cursor.Close(ctx)

	var assessments []shared.Assessment
	if err := cursor.All(ctx, &assessments); err != nil {
		return nil, status.Error(codes.Internal, "failed to decode assessments")
	}
	return assessments, nil
}
