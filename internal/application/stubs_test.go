package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

type userRepoStub struct {
	users     map[string]User
	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func newUserRepoStub(users ...User) *userRepoStub {
	stub := &userRepoStub{users: make(map[string]User)}
	for _, user := range users {
		stub.users[user.ID] = user
	}
	return stub
}

func (s *userRepoStub) CreateUser(ctx context.Context, user User) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) UpdateUser(ctx context.Context, user User) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) GetUser(ctx context.Context, id string) (User, error) {
	user, ok := s.users[id]
	if !ok {
		return User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *userRepoStub) GetUserByEmail(ctx context.Context, email string) (User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, persistence.ErrNotFound
}

func (s *userRepoStub) ListUsers(ctx context.Context, page Page) ([]User, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	out := make([]User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, len(out), nil
}

func (s *userRepoStub) DeleteUser(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type eventRepoStub struct {
	events    map[string]Event
	createErr error
	updateErr error
	deleteErr error
}

func newEventRepoStub(events ...Event) *eventRepoStub {
	stub := &eventRepoStub{events: make(map[string]Event)}
	for _, event := range events {
		stub.events[event.ID] = event
	}
	return stub
}

func (s *eventRepoStub) CreateEvent(ctx context.Context, event Event) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.events[event.ID] = event
	return nil
}

func (s *eventRepoStub) UpdateEvent(ctx context.Context, event Event, replacePacking bool) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	existing, ok := s.events[event.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if !replacePacking {
		event.PackingEquipments = existing.PackingEquipments
	}
	s.events[event.ID] = event
	return nil
}

func (s *eventRepoStub) GetEvent(ctx context.Context, id string) (Event, error) {
	event, ok := s.events[id]
	if !ok {
		return Event{}, persistence.ErrNotFound
	}
	return event, nil
}

func (s *eventRepoStub) ListEvents(ctx context.Context, page Page) ([]Event, int, error) {
	out := make([]Event, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event)
	}
	return out, len(out), nil
}

func (s *eventRepoStub) ListEventsByIDs(ctx context.Context, ids []string) ([]Event, error) {
	out := make([]Event, 0, len(ids))
	for _, id := range ids {
		if event, ok := s.events[id]; ok {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *eventRepoStub) DeleteEvent(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

type equipmentRepoStub struct {
	equipments map[string]Equipment
	packing    map[string]PackingEquipment
	deleteErr  error
}

func newEquipmentRepoStub(equipments ...Equipment) *equipmentRepoStub {
	stub := &equipmentRepoStub{
		equipments: make(map[string]Equipment),
		packing:    make(map[string]PackingEquipment),
	}
	for _, equipment := range equipments {
		stub.equipments[equipment.ID] = equipment
	}
	return stub
}

func (s *equipmentRepoStub) CreateEquipment(ctx context.Context, equipment Equipment) error {
	s.equipments[equipment.ID] = equipment
	return nil
}

func (s *equipmentRepoStub) UpdateEquipment(ctx context.Context, equipment Equipment) error {
	if _, ok := s.equipments[equipment.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.equipments[equipment.ID] = equipment
	return nil
}

func (s *equipmentRepoStub) GetEquipment(ctx context.Context, id string) (Equipment, error) {
	equipment, ok := s.equipments[id]
	if !ok {
		return Equipment{}, persistence.ErrNotFound
	}
	return equipment, nil
}

func (s *equipmentRepoStub) ListEquipments(ctx context.Context, page Page) ([]Equipment, int, error) {
	out := make([]Equipment, 0, len(s.equipments))
	for _, equipment := range s.equipments {
		out = append(out, equipment)
	}
	return out, len(out), nil
}

func (s *equipmentRepoStub) DeleteEquipment(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.equipments[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, packing := range s.packing {
		if packing.EquipmentID == id {
			return persistence.ErrReferenced
		}
	}
	delete(s.equipments, id)
	return nil
}

func (s *equipmentRepoStub) CreatePackingEquipment(ctx context.Context, packing PackingEquipment) error {
	if _, ok := s.equipments[packing.EquipmentID]; !ok {
		return &persistence.MissingReferenceError{Entity: "equipment", ID: packing.EquipmentID}
	}
	for _, existing := range s.packing {
		if existing.EventID == packing.EventID && existing.EquipmentID == packing.EquipmentID {
			return persistence.ErrDuplicate
		}
	}
	s.packing[packing.ID] = packing
	return nil
}

func (s *equipmentRepoStub) ListPackingForEvent(ctx context.Context, eventID string, page Page) ([]PackingEquipment, int, error) {
	out := make([]PackingEquipment, 0)
	for _, packing := range s.packing {
		if packing.EventID == eventID {
			packing.Equipment = s.equipments[packing.EquipmentID]
			out = append(out, packing)
		}
	}
	return out, len(out), nil
}

type mealRepoStub struct {
	meals     map[string]Meal
	deleteErr error
}

func newMealRepoStub(meals ...Meal) *mealRepoStub {
	stub := &mealRepoStub{meals: make(map[string]Meal)}
	for _, meal := range meals {
		stub.meals[meal.ID] = meal
	}
	return stub
}

func (s *mealRepoStub) CreateMeal(ctx context.Context, meal Meal) error {
	s.meals[meal.ID] = meal
	return nil
}

func (s *mealRepoStub) UpdateMeal(ctx context.Context, meal Meal) error {
	if _, ok := s.meals[meal.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.meals[meal.ID] = meal
	return nil
}

func (s *mealRepoStub) GetMeal(ctx context.Context, id string) (Meal, error) {
	meal, ok := s.meals[id]
	if !ok {
		return Meal{}, persistence.ErrNotFound
	}
	return meal, nil
}

func (s *mealRepoStub) ListMeals(ctx context.Context, page Page) ([]Meal, int, error) {
	out := make([]Meal, 0, len(s.meals))
	for _, meal := range s.meals {
		out = append(out, meal)
	}
	return out, len(out), nil
}

func (s *mealRepoStub) DeleteMeal(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.meals[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.meals, id)
	return nil
}

type attendanceRepoStub struct {
	attendances map[string]Attendance
	options     map[string]EventMealOption
	choices     map[string]MealChoice
	createErr   error
}

func newAttendanceRepoStub() *attendanceRepoStub {
	return &attendanceRepoStub{
		attendances: make(map[string]Attendance),
		options:     make(map[string]EventMealOption),
		choices:     make(map[string]MealChoice),
	}
}

func (s *attendanceRepoStub) CreateAttendance(ctx context.Context, attendance Attendance) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.attendances {
		if existing.UserID == attendance.UserID && existing.EventID == attendance.EventID {
			return persistence.ErrDuplicate
		}
	}
	s.attendances[attendance.ID] = attendance
	return nil
}

func (s *attendanceRepoStub) UpdateAttendance(ctx context.Context, attendance Attendance) error {
	if _, ok := s.attendances[attendance.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.attendances[attendance.ID] = attendance
	return nil
}

func (s *attendanceRepoStub) GetAttendance(ctx context.Context, id string) (Attendance, error) {
	attendance, ok := s.attendances[id]
	if !ok {
		return Attendance{}, persistence.ErrNotFound
	}
	return attendance, nil
}

func (s *attendanceRepoStub) GetAttendanceByUserEvent(ctx context.Context, userID, eventID string) (Attendance, error) {
	for _, attendance := range s.attendances {
		if attendance.UserID == userID && attendance.EventID == eventID {
			return attendance, nil
		}
	}
	return Attendance{}, persistence.ErrNotFound
}

func (s *attendanceRepoStub) ListEventIDsForUser(ctx context.Context, userID string, page Page) ([]string, int, error) {
	var out []string
	for _, attendance := range s.attendances {
		if attendance.UserID == userID && attendance.IsAttending {
			out = append(out, attendance.EventID)
		}
	}
	sort.Strings(out)
	total := len(out)
	page = page.Clamp()
	if page.Skip < len(out) {
		out = out[page.Skip:]
	} else {
		out = nil
	}
	if len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, total, nil
}

func (s *attendanceRepoStub) DeleteAttendance(ctx context.Context, id string) error {
	if _, ok := s.attendances[id]; !ok {
		return persistence.ErrNotFound
	}
	for choiceID, choice := range s.choices {
		if choice.AttendanceID == id {
			delete(s.choices, choiceID)
		}
	}
	delete(s.attendances, id)
	return nil
}

func (s *attendanceRepoStub) GetEventMealOption(ctx context.Context, id string) (EventMealOption, error) {
	option, ok := s.options[id]
	if !ok {
		return EventMealOption{}, persistence.ErrNotFound
	}
	return option, nil
}

func (s *attendanceRepoStub) CreateMealChoice(ctx context.Context, choice MealChoice) error {
	s.choices[choice.ID] = choice
	return nil
}

func (s *attendanceRepoStub) UpdateMealChoice(ctx context.Context, choice MealChoice) error {
	if _, ok := s.choices[choice.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.choices[choice.ID] = choice
	return nil
}

func (s *attendanceRepoStub) GetMealChoice(ctx context.Context, id string) (MealChoice, error) {
	choice, ok := s.choices[id]
	if !ok {
		return MealChoice{}, persistence.ErrNotFound
	}
	return choice, nil
}

func (s *attendanceRepoStub) ListMealChoicesForUser(ctx context.Context, userID string, attendanceID string) ([]MealChoice, error) {
	out := make([]MealChoice, 0)
	for _, choice := range s.choices {
		attendance, ok := s.attendances[choice.AttendanceID]
		if !ok || attendance.UserID != userID {
			continue
		}
		if attendanceID != "" && choice.AttendanceID != attendanceID {
			continue
		}
		out = append(out, choice)
	}
	return out, nil
}

func (s *attendanceRepoStub) DeleteMealChoice(ctx context.Context, id string) error {
	if _, ok := s.choices[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.choices, id)
	return nil
}

func (s *attendanceRepoStub) SumChoiceQuantityForOption(ctx context.Context, optionID, excludeChoiceID string) (int, error) {
	total := 0
	for id, choice := range s.choices {
		if choice.EventMealOptionID != optionID {
			continue
		}
		if excludeChoiceID != "" && id == excludeChoiceID {
			continue
		}
		total += choice.Quantity
	}
	return total, nil
}

func sequentialIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
