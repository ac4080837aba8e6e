package markset

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"markbook/internal/shared"
)

// Service implements the mark-set store: the authoritative cell matrix
// behind the grid client. All mutations land here before any client cache
// is allowed to change.
type Service struct {
	db             *mongo.Database
	classesCol     *mongo.Collection
	markSetsCol    *mongo.Collection
	studentsCol    *mongo.Collection
	assessmentsCol *mongo.Collection
	scoresCol      *mongo.Collection
}

// NewService creates a new mark-set store service instance
func NewService(db *mongo.Database) *Service {
	return &Service{
		db:             db,
		classesCol:     db.Collection("classes"),
		markSetsCol:    db.Collection("mark_sets"),
		studentsCol:    db.Collection("students"),
		assessmentsCol: db.Collection("assessments"),
		scoresCol:      db.Collection("scores"),
	}
}

// OpenResult is the response shape of Open: the grid's axes and dimensions.
type OpenResult struct {
	Students    []shared.Student    `json:"students"`
	Assessments []shared.Assessment `json:"assessments"`
	RowCount    int32               `json:"row_count"`
	ColCount    int32               `json:"col_count"`
}

// Open loads the roster and assessment axes for one mark set.
func (s *Service) Open(ctx context.Context, classID, markSetID string) (*OpenResult, error) {
	if classID == "" || markSetID == "" {
		return nil, status.Error(codes.InvalidArgument, "class_id and mark_set_id are required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.validateMarkSet(queryCtx, classID, markSetID); err != nil {
		return nil, err
	}

	students, err := s.loadRoster(queryCtx, classID)
	if err != nil {
		return nil, err
	}

	assessments, err := s.loadAssessments(queryCtx, markSetID)
	if err != nil {
		return nil, err
	}

	return &OpenResult{
		Students:    students,
		Assessments: assessments,
		RowCount:    int32(len(students)),
		ColCount:    int32(len(assessments)),
	}, nil
}

// GetRange returns the score matrix for a rectangular window of the grid.
// The response is shaped exactly rowCount x colCount; cells with no stored
// score come back as nil (No Mark).
func (s *Service) GetRange(ctx context.Context, classID, markSetID string, rowStart, rowCount, colStart, colCount int) ([][]*float64, error) {
	if classID == "" || markSetID == "" {
		return nil, status.Error(codes.InvalidArgument, "class_id and mark_set_id are required")
	}
	if rowStart < 0 || colStart < 0 || rowCount < 0 || colCount < 0 {
		return nil, status.Error(codes.InvalidArgument, "range bounds must be non-negative")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.validateMarkSet(queryCtx, classID, markSetID); err != nil {
		return nil, err
	}

	students, err := s.loadRoster(queryCtx, classID)
	if err != nil {
		return nil, err
	}
	assessments, err := s.loadAssessments(queryCtx, markSetID)
	if err != nil {
		return nil, err
	}

	if rowStart+rowCount > len(students) || colStart+colCount > len(assessments) {
		return nil, status.Error(codes.OutOfRange, "requested range exceeds grid bounds")
	}

	// Index every stored score by (student, assessment) for the window
	values, err := s.loadScoreIndex(queryCtx, markSetID)
	if err != nil {
		return nil, err
	}

	cells := make([][]*float64, rowCount)
	for r := 0; r < rowCount; r++ {
		cells[r] = make([]*float64, colCount)
		for c := 0; c < colCount; c++ {
			key := scoreKey(students[rowStart+r].ID, assessments[colStart+c].ID)
			cells[r][c] = values[key]
		}
	}

	return cells, nil
}

// UpdateCell applies a single-cell edit. editKind must agree with value
// nullness: "set" carries a non-negative number, "clear" carries nil.
func (s *Service) UpdateCell(ctx context.Context, classID, markSetID string, row, col int, value *float64, editKind string) error {
	if classID == "" || markSetID == "" {
		return status.Error(codes.InvalidArgument, "class_id and mark_set_id are required")
	}
	if !shared.ValidEditKind(editKind) {
		return status.Errorf(codes.InvalidArgument, "unknown edit kind %q", editKind)
	}
	if editKind == shared.EditKindSet && value == nil {
		return status.Error(codes.InvalidArgument, "set edit requires a value")
	}
	if editKind == shared.EditKindClear && value != nil {
		return status.Error(codes.InvalidArgument, "clear edit must not carry a value")
	}
	if value != nil && *value < 0 {
		return status.Error(codes.InvalidArgument, "negative marks are not allowed")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.validateMarkSet(queryCtx, classID, markSetID); err != nil {
		return err
	}

	students, err := s.loadRoster(queryCtx, classID)
	if err != nil {
		return err
	}
	assessments, err := s.loadAssessments(queryCtx, markSetID)
	if err != nil {
		return err
	}

	if row < 0 || row >= len(students) || col < 0 || col >= len(assessments) {
		return status.Errorf(codes.OutOfRange, "cell (%d, %d) is outside the grid", row, col)
	}

	if err := s.upsertScore(queryCtx, markSetID, students[row].ID, assessments[col].ID, value); err != nil {
		log.Printf("Error writing score (%d, %d) in mark set %s: %v", row, col, markSetID, err)
		return status.Error(codes.Internal, "failed to write score")
	}

	return nil
}

// BulkUpdate applies a batch of edit instructions as one acknowledged call.
// Every instruction is validated against the grid bounds and the state/value
// contract before any write happens.
func (s *Service) BulkUpdate(ctx context.Context, classID, markSetID string, edits []shared.EditInstruction) error {
	if classID == "" || markSetID == "" {
		return status.Error(codes.InvalidArgument, "class_id and mark_set_id are required")
	}
	if len(edits) == 0 {
		return status.Error(codes.InvalidArgument, "edit batch is empty")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := s.validateMarkSet(queryCtx, classID, markSetID); err != nil {
		return err
	}

	students, err := s.loadRoster(queryCtx, classID)
	if err != nil {
		return err
	}
	assessments, err := s.loadAssessments(queryCtx, markSetID)
	if err != nil {
		return err
	}

	// Validate the whole batch up front so a bad instruction rejects the
	// batch before any write
	for i, edit := range edits {
		if err := edit.Validate(); err != nil {
			return status.Errorf(codes.InvalidArgument, "edit %d: %v", i, err)
		}
		if int(edit.Row) >= len(students) || int(edit.Col) >= len(assessments) {
			return status.Errorf(codes.OutOfRange, "edit %d: cell (%d, %d) is outside the grid", i, edit.Row, edit.Col)
		}
	}

	models := make([]mongo.WriteModel, 0, len(edits))
	now := time.Now()
	for _, edit := range edits {
		studentID := students[edit.Row].ID
		assessmentID := assessments[edit.Col].ID

		update := bson.M{
			"$set": bson.M{
				"mark_set_id":   markSetID,
				"student_id":    studentID,
				"assessment_id": assessmentID,
				"value":         edit.Value,
				"modified_at":   now,
			},
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": scoreKey(studentID, assessmentID) + "@" + markSetID}).
			SetUpdate(update).
			SetUpsert(true))
	}

	if _, err := s.scoresCol.BulkWrite(queryCtx, models); err != nil {
		log.Printf("Error applying bulk update of %d edits to mark set %s: %v", len(edits), markSetID, err)
		return status.Error(codes.Internal, "failed to apply bulk update")
	}

	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func scoreKey(studentID, assessmentID string) string {
	return studentID + ":" + assessmentID
}

func (s *Service) validateMarkSet(ctx context.Context, classID, markSetID string) error {
	var markSet shared.MarkSet
	if err := s.markSetsCol.FindOne(ctx, bson.M{"_id": markSetID}).Decode(&markSet); err != nil {
		if err == mongo.ErrNoDocuments {
			return status.Errorf(codes.NotFound, "mark set %s not found", markSetID)
		}
		log.Printf("Error finding mark set %s: %v", markSetID, err)
		return status.Error(codes.Internal, "failed to retrieve mark set")
	}
	if markSet.ClassID != classID {
		return status.Errorf(codes.NotFound, "mark set %s does not belong to class %s", markSetID, classID)
	}
	return nil
}

// loadRoster returns the class roster ordered by sort order; inactive
// students stay in the grid (their rows are frozen by the client, not here)
func (s *Service) loadRoster(ctx context.Context, classID string) ([]shared.Student, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.studentsCol.Find(ctx, bson.M{"class_id": classID}, findOptions)
	if err != nil {
		log.Printf("Error querying roster for class %s: %v", classID, err)
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
		log.Printf("Error querying assessments for mark set %s: %v", markSetID, err)
		return nil, status.Error(codes.Internal, "failed to retrieve assessments")
	}
	defer cursor.Close(ctx)

	var assessments []shared.Assessment
	if err := cursor.All(ctx, &assessments); err != nil {
		return nil, status.Error(codes.Internal, "failed to decode assessments")
	}
	return assessments, nil
}

// loadScoreIndex returns all stored score values for a mark set keyed by
// (student, assessment)
func (s *Service) loadScoreIndex(ctx context.Context, markSetID string) (map[string]*float64, error) {
	cursor, err := s.scoresCol.Find(ctx, bson.M{"mark_set_id": markSetID})
	if err != nil {
		log.Printf("Error querying scores for mark set %s: %v", markSetID, err)
		return nil, status.Error(codes.Internal, "failed to retrieve scores")
	}
	defer cursor.Close(ctx)

	values := make(map[string]*float64)
	for cursor.Next(ctx) {
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
		values[scoreKey(studentID, assessmentID)] = value
	}

	return values, nil
}

func (s *Service) upsertScore(ctx context.Context, markSetID, studentID, assessmentID string, value *float64) error {
	update := bson.M{
		"$set": bson.M{
			"mark_set_id":   markSetID,
			"student_id":    studentID,
			"assessment_id": assessmentID,
			"value":         value,
			"modified_at":   time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.scoresCol.UpdateOne(ctx, bson.M{"_id": scoreKey(studentID, assessmentID) + "@" + markSetID}, update, opts)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}
