// Package docs contains Swagger documentation for the Storefront Session API.
//
//	@title						Storefront Session API
//	@version					1.0
//	@description				Accounts, single-session login and session lifecycle for the storefront
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//	@host						localhost:8080
//	@BasePath					/api
//	@schemes					http https
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@tag.name					auth
//	@tag.description			Login, registration and session lifecycle
//	@tag.name					users
//	@tag.description			Profile of the authenticated user
//	@tag.name					admin
//	@tag.description			Audit trail and session inspection
package docs
