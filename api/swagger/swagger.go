package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "StellarEdu Consult API",
        "description": "Identity and user management service for the StellarEdu study-abroad platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, tokens, verification and password flows"},
        {"name": "Users", "description": "Back-office user management"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new student account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email and password",
                "responses": {
                    "200": {"description": "Token pair and user info"},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Verification required or account inactive"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange a refresh token for a new pair",
                "responses": {
                    "200": {"description": "Rotated token pair"},
                    "401": {"description": "Refresh token expired or revoked"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the session and clear cookies",
                "responses": {
                    "204": {"description": "Logged out"},
                    "401": {"description": "Authentication required"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user resolved from any token source",
                "responses": {
                    "200": {"description": "User info"},
                    "401": {"description": "Authentication required"}
                }
            }
        },
        "/auth/verify-otp": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Verify account with the emailed code",
                "responses": {
                    "204": {"description": "Verified"},
                    "400": {"description": "Invalid or expired code"}
                }
            }
        },
        "/auth/resend-otp": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Resend the verification code",
                "responses": {
                    "202": {"description": "Accepted"},
                    "429": {"description": "Cooldown active"}
                }
            }
        },
        "/auth/forgot-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Initiate the password reset flow",
                "responses": {
                    "202": {"description": "Accepted"}
                }
            }
        },
        "/auth/reset-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Complete the reset flow with a token",
                "responses": {
                    "204": {"description": "Password updated"},
                    "400": {"description": "Invalid or expired token"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change the current user's password",
                "responses": {
                    "204": {"description": "Password updated"},
                    "401": {"description": "Authentication required"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users with filters and pagination",
                "responses": {
                    "200": {"description": "User page"},
                    "403": {"description": "Admin role required"}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Provision a user account",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Super admin required for admin roles"}
                }
            }
        },
        "/users/export": {
            "get": {
                "tags": ["Users"],
                "summary": "Export the user roster as CSV or PDF",
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user",
                "responses": {
                    "200": {"description": "User"},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Users"],
                "summary": "Update a user",
                "responses": {
                    "200": {"description": "Updated user"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Deactivate a user",
                "responses": {
                    "204": {"description": "Deactivated"},
                    "404": {"description": "Not found"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "StellarEdu Consult API",
	Description:      "Identity and user management service for the StellarEdu study-abroad platform",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
