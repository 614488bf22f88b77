package handler

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"artgen/internal/app/apperr"
	"artgen/internal/app/logger"
	"artgen/internal/app/model"
	"artgen/internal/app/session"
	"artgen/internal/app/storage"
)

type UserHandler struct {
	session session.Creator
	users   storage.UserRepository
}

func NewUserHandler(users storage.UserRepository, sm session.Creator) *UserHandler {
	return &UserHandler{
		session: sm,
		users:   users,
	}
}

type userPayload struct {
	Name          string `json:"name"`
	CreditBalance int64  `json:"creditBalance"`
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.User.Register")

	in := struct {
		Name     string `json:"name" validate:"required,min=1,max=64"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	u, err := h.users.Create(r.Context(), &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
	})

	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			log.Debug().Err(err).Send()
			WriteError(w, errors.New("user already exists"), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	token, err := h.session.Create(r.Context(), u)
	if err != nil {
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, authResponse{
		Success: true,
		Token:   token,
		User:    userPayload{Name: u.Name, CreditBalance: u.CreditBalance},
	}, http.StatusCreated)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.User.Login")

	in := struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	u, err := h.users.ReadByEmail(r.Context(), in.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			WriteError(w, errors.New("user doesn't exist"), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		log.Debug().Msg("Password mismatch")
		WriteError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}

	token, err := h.session.Create(r.Context(), u)
	if err != nil {
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, authResponse{
		Success: true,
		Token:   token,
		User:    userPayload{Name: u.Name, CreditBalance: u.CreditBalance},
	}, http.StatusOK)
}

func (h *UserHandler) Credits(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.User.Credits")

	userID, err := ReadContextUserID(r.Context())
	if err != nil {
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	u, err := h.users.Read(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			WriteError(w, errors.New("user not found"), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	out := struct {
		Success bool        `json:"success"`
		Credits int64       `json:"credits"`
		User    userPayload `json:"user"`
	}{
		Success: true,
		Credits: u.CreditBalance,
		User:    userPayload{Name: u.Name, CreditBalance: u.CreditBalance},
	}

	WriteResponse(w, out, http.StatusOK)
}

// Plans lists the purchasable credit packs. No auth: the storefront shows
// the catalog before login.
func (h *UserHandler) Plans(w http.ResponseWriter, r *http.Request) {
	out := struct {
		Success bool         `json:"success"`
		Plans   []model.Plan `json:"plans"`
	}{
		Success: true,
		Plans:   model.Plans(),
	}

	WriteResponse(w, out, http.StatusOK)
}
