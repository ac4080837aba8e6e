package main

import (
	"context"
	"log"
	"time"

	"markbook/internal/markset"
	"markbook/internal/shared"
)

// Seeds a demo class with a roster, one mark set, a handful of assessments,
// and some scores. Intended for local development and manual testing.

var studentNames = []string{
	"Avery Chen",
	"Jordan Baker",
	"Sam Williams",
	"Riley Nakamura",
	"Casey Ortiz",
	"Morgan Patel",
}

type seedAssessment struct {
	title    string
	category string
	weight   float64
	outOf    float64
}

var seedAssessments = []seedAssessment{
	{title: "Quiz 1", category: "Quiz", weight: 10, outOf: 20},
	{title: "Lab 1", category: "Lab", weight: 15, outOf: 30},
	{title: "Quiz 2", category: "Quiz", weight: 10, outOf: 20},
	{title: "Midterm", category: "Exam", weight: 30, outOf: 100},
}

func main() {
	log.Println("INFO: Starting seeder...")

	shared.LoadEnv("")
	cfg, err := shared.LoadServiceConfig("seeder")
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	service := markset.NewService(db)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// 1. Class
	class, err := service.CreateClass(ctx, markset.CreateClassRequest{
		Name: "Grade 10 Science",
		Term: "Fall 2026",
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create class: %v", err)
	}
	log.Printf("INFO: Created class %s (%s)", class.Name, class.ID)

	// 2. Roster
	for i, name := range studentNames {
		if _, err := service.AddStudent(ctx, class.ID, markset.AddStudentRequest{
			DisplayName: name,
			SortOrder:   int32(i),
		}); err != nil {
			log.Fatalf("FATAL: Failed to add student %s: %v", name, err)
		}
	}
	log.Printf("INFO: Added %d students", len(studentNames))

	// 3. Mark set + assessments
	markSet, err := service.CreateMarkSet(ctx, class.ID, markset.CreateMarkSetRequest{Name: "Term 1"})
	if err != nil {
		log.Fatalf("FATAL: Failed to create mark set: %v", err)
	}
	log.Printf("INFO: Created mark set %s (%s)", markSet.Name, markSet.ID)

	for i, a := range seedAssessments {
		if _, err := service.AddAssessment(ctx, class.ID, markSet.ID, markset.AddAssessmentRequest{
			Idx:          int32(i),
			Date:         time.Now().AddDate(0, 0, -7*(len(seedAssessments)-i)),
			CategoryName: a.category,
			Title:        a.title,
			Weight:       a.weight,
			OutOf:        a.outOf,
		}); err != nil {
			log.Fatalf("FATAL: Failed to add assessment %s: %v", a.title, err)
		}
	}
	log.Printf("INFO: Added %d assessments", len(seedAssessments))

	// 4. Scores: fill the first two columns, leave the rest sparse.
	// Includes an explicit zero and a few No Marks so derived views have
	// something interesting to show.
	var edits []shared.EditInstruction
	seedValues := [][]*float64{
		{f(18), f(25)},
		{f(14), f(0)},
		{nil, f(22)},
		{f(20), nil},
		{f(9), f(28)},
		{f(16), f(30)},
	}
	for row, values := range seedValues {
		for col, v := range values {
			edit := shared.EditInstruction{Row: int32(row), Col: int32(col), Value: v}
			switch {
			case v == nil:
				edit.State = shared.EditStateNoMark
			case *v == 0:
				edit.State = shared.EditStateZero
			default:
				edit.State = shared.EditStateScored
			}
			edits = append(edits, edit)
		}
	}

	if err := service.BulkUpdate(ctx, class.ID, markSet.ID, edits); err != nil {
		log.Fatalf("FATAL: Failed to seed scores: %v", err)
	}
	log.Printf("INFO: Seeded %d scores", len(edits))

	log.Println("INFO: Seeding complete.")
	log.Printf("INFO: class_id=%s mark_set_id=%s", class.ID, markSet.ID)
}

func f(v float64) *float64 { return &v }
