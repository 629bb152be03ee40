package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LearnVerse Auth API",
        "description": "Token-based authentication and session lifecycle service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Session issuance, refresh and teardown"},
        {"name": "Users", "description": "Role management owned by the auth core"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "responses": {
                    "200": {"description": "Session object"},
                    "400": {"description": "Duplicate email or validation failure"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Session object"},
                    "400": {"description": "Invalid credentials or disabled account"}
                }
            }
        },
        "/auth/refresh-token": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Session object with the same refresh token"},
                    "400": {"description": "Refresh token expired"},
                    "404": {"description": "Refresh token not found"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "200": {"description": "Always succeeds"}
                }
            }
        },
        "/auth/logout-all": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout from all devices",
                "responses": {
                    "200": {"description": "Message"},
                    "401": {"description": "Unauthenticated"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current identity",
                "responses": {
                    "200": {"description": "Identity"},
                    "401": {"description": "Unauthenticated"}
                }
            }
        },
        "/users/{id}/upgrade-tutor": {
            "post": {
                "tags": ["Users"],
                "summary": "Promote a user to tutor",
                "responses": {
                    "200": {"description": "Updated user"},
                    "403": {"description": "Requires ADMIN role"},
                    "404": {"description": "User not found"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "LearnVerse Auth API",
	Description:      "Token-based authentication and session lifecycle service",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
