package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/careshift-dev/roster-manager/backend/internal/config"
	"github.com/careshift-dev/roster-manager/backend/internal/domain"
	"github.com/careshift-dev/roster-manager/backend/internal/repository"
	"github.com/careshift-dev/roster-manager/backend/internal/roster"
)

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   *repository.Repository
	translator   ut.Translator
	mailChannel  *amqp.Channel
	redisClient  *redis.Client
	materializer *roster.Materializer

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		mailChannel:  mailCh,
		redisClient:  rdb,
		materializer: roster.NewMaterializer(repo, cfg.Schedule.HorizonMonths),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo) // 机构隔离依赖个人信息，统一在这里加载

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 员工通讯录，机构内所有人可见
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateOrganization)
			r.Get("/", h.GetAllOrganizations)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.organizationInfo)
				r.Get("/", h.GetOrganization)
				r.Patch("/", h.UpdateOrganization)
				r.Delete("/", h.DeleteOrganization)
			})
		})

		r.Route("/facilities", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Post("/", h.CreateFacility)
			r.Get("/", h.GetAllFacilities)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.facilityInfo)
				r.Get("/", h.GetFacility)
				r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Patch("/", h.UpdateFacility)
				r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Delete("/", h.DeleteFacility)
				r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Post("/sectors", h.CreateSector)
				r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Delete("/sectors/{sectorID}", h.DeleteSector)
			})
		})

		r.Route("/recurring-schedules", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Post("/", h.CreateDefinition)
			r.Get("/", h.GetAllDefinitions)
			r.Post("/check-conflicts", h.CheckConflicts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.definitionInfo)
				r.Get("/", h.GetDefinition)
				r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Patch("/", h.UpdateDefinition)
				r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Delete("/", h.DeleteDefinition)
				r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Post("/generate", h.GenerateDefinitionShifts)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.GetShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftInfo)
				r.Get("/", h.GetShift)
				r.Patch("/status", h.RespondShift)
			})
		})

		r.Route("/swap-requests", func(r chi.Router) {
			r.Post("/", h.CreateSwapRequest)
			r.Get("/", h.GetMySwapRequests)
			r.With(h.RequiredRole([]domain.Role{domain.RoleRosterManager, domain.RoleAdmin})).Get("/all", h.GetAllSwapRequests)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.swapRequestInfo)
				r.Post("/approve", h.ApproveSwapRequest)
				r.Post("/decline", h.DeclineSwapRequest)
			})
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/messages", h.GetChatMessages)
			r.Post("/messages", h.PostChatMessage)
			r.Post("/attachments", h.RegisterAttachment)
		})
	})
}
