package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/dilshan/canteen-meal-service/internal/repository"
    "github.com/dilshan/canteen-meal-service/internal/utils"
)

// AuthHandler issues access tokens. Employees authenticate with their
// username plus registered mobile number; there is no password flow.
type AuthHandler struct {
    Users     *repository.UserRepo
    JWTSecret string
    TTLMin    int
}

func NewAuthHandler(users *repository.UserRepo, secret string, ttlMin int) *AuthHandler {
    return &AuthHandler{Users: users, JWTSecret: secret, TTLMin: ttlMin}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
    var req struct {
        Username     string `json:"username"`
        MobileNumber string `json:"mobile_number"`
    }
    if err := c.Bind(&req); err != nil || req.Username == "" || req.MobileNumber == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": "username and mobile_number are required"})
    }

    user, err := h.Users.GetByCredentials(c.Request().Context(), req.Username, req.MobileNumber)
    if err != nil {
        // Same answer for unknown user and wrong mobile number.
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid credentials"})
    }

    token, err := utils.NewAccessToken(h.JWTSecret, user.ID, user.Role, user.SubRole, h.TTLMin)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access_token": token.Token,
        "expires_at":   token.Exp,
        "user": echo.Map{
            "id":        user.ID,
            "full_name": user.FullName(),
            "role":      user.Role,
            "sub_role":  user.SubRole,
        },
    })
}

// Me handles GET /v1/me and returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := userID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing identity"})
    }
    user, err := h.Users.GetByID(c.Request().Context(), uid)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":            user.ID,
        "full_name":     user.FullName(),
        "username":      user.Username,
        "mobile_number": user.MobileNumber,
        "role":          user.Role,
        "sub_role":      user.SubRole,
        "company_name":  user.CompanyName,
        "loan_amount":   user.LoanAmount,
        "loan_limit":    user.LoanLimit(),
    })
}
