// Package http provides HTTP handlers and middleware for the camp planner
// API.
//
// The router exposes the following endpoints:
//   - POST /login/access-token: exchanges {"email","password"} for
//     {"access_token","token_type","expires_at"}.
//   - POST /users/signup: open student registration. All other /users routes
//     require a bearer token: GET /users/me and PATCH /users/me for the
//     caller's own profile, plus administrator-only GET /users,
//     POST /users, GET /users/{id}, PUT /users/{id}, DELETE /users/{id}.
//   - GET /events, POST /events, GET /events/{id}, PUT /events/{id},
//     DELETE /events/{id}: event management exchanging the `eventDTO`
//     payload defined in event_handler.go. Creation requires the teacher
//     role; mutation requires the creator or an administrator.
//   - POST /attendance/{event_id}/join, POST /attendance/{event_id}/leave,
//     GET /attendance/my-events, GET /attendance/{event_id}/packing-list,
//     GET /attendance/my-packing-lists: attendance and derived packing views.
//   - GET /equipments, POST /equipments, GET /equipments/{id},
//     PUT /equipments/{id}, DELETE /equipments/{id}: equipment catalog,
//     plus POST /equipments/events/{event_id}/packing and
//     GET /equipments/events/{event_id}/packing for a single event's list.
//   - GET /meals, POST /meals, GET /meals/{id}, PUT /meals/{id},
//     DELETE /meals/{id}: meal catalog for staff and teachers.
//   - POST /meal-choices, GET /meal-choices, GET /meal-choices/{id},
//     PUT /meal-choices/{id}, DELETE /meal-choices/{id}: per-attendance
//     meal selections.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
