package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/utils"
)

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetPassword(ctx context.Context, id, hash string) error
	UpsertOAuth(ctx context.Context, provider, providerID, email, name string) (*models.User, error)
}

// LoginCache évite de recalculer le hash pour une connexion déjà validée.
type LoginCache interface {
	Verified(ctx context.Context, email, password, storedHash string) bool
	Remember(ctx context.Context, email, password, storedHash string)
}

type AdminCredentials struct {
	Email    string
	Password string
}

type AuthHandler struct {
	users       UserStore
	tokens      *utils.TokenIssuer
	admin       AdminCredentials
	logins      LoginCache
	frontendURL string
}

func NewAuthHandler(users UserStore, tokens *utils.TokenIssuer, admin AdminCredentials, logins LoginCache, frontendURL string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, admin: admin, logins: logins, frontendURL: frontendURL}
}

var errBadCredentials = apperr.Unauthorized("Email ou mot de passe incorrect")

// POST /api/user/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Nom, email valide et mot de passe de 8 caractères minimum requis")
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	user := models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hash,
		Provider: "local",
	}
	if err := h.users.Insert(c.Request.Context(), &user); err != nil {
		utils.Fail(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex(), user.Email, utils.RoleUser)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	log.Printf("✅ Nouvel utilisateur %s", user.Email)
	utils.OK(c, http.StatusCreated, gin.H{"token": token})
}

// POST /api/user/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Email et mot de passe requis")
		return
	}
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = errBadCredentials
		}
		utils.Fail(c, err)
		return
	}
	if user.Password == "" {
		utils.Fail(c, apperr.Unauthorized("Ce compte utilise la connexion Google"))
		return
	}

	if h.logins == nil || !h.logins.Verified(ctx, email, input.Password, user.Password) {
		ok, err := utils.VerifyPassword(input.Password, user.Password)
		if err != nil || !ok {
			utils.Fail(c, errBadCredentials)
			return
		}
		if utils.NeedsRehash(user.Password) {
			h.rehash(ctx, user, input.Password)
		} else if h.logins != nil {
			h.logins.Remember(ctx, email, input.Password, user.Password)
		}
	}

	token, err := h.tokens.Issue(user.ID.Hex(), user.Email, utils.RoleUser)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"token": token})
}

// rehash migre un ancien hash bcrypt vers Argon2id.
func (h *AuthHandler) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return
	}
	if err := h.users.SetPassword(ctx, user.ID.Hex(), hash); err != nil {
		log.Printf("⚠️ Migration du mot de passe impossible pour %s: %v", user.Email, err)
		return
	}
	log.Printf("🔐 Mot de passe de %s migré vers Argon2id", user.Email)
}

// POST /api/user/admin
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Email et mot de passe requis")
		return
	}
	if h.admin.Email == "" || h.admin.Password == "" ||
		subtle.ConstantTimeCompare([]byte(input.Email), []byte(h.admin.Email)) != 1 ||
		subtle.ConstantTimeCompare([]byte(input.Password), []byte(h.admin.Password)) != 1 {
		utils.Fail(c, apperr.Unauthorized("Identifiants administrateur invalides"))
		return
	}

	token, err := h.tokens.Issue("admin", h.admin.Email, utils.RoleAdmin)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	log.Printf("🔑 Connexion administrateur")
	utils.OK(c, http.StatusOK, gin.H{"token": token})
}
