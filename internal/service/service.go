// Package service contains the business logic.
//
// It sits between the handler and repository layers. Plain CRUD on
// projects, skills and contacts goes straight from handlers to
// repositories; the services here hold what is more than a mapping:
// admin authentication and provisioning, translation import, upload
// checks and the initial data seed.
package service
