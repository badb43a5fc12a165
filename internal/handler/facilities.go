package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func (h *Handler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name    string `json:"name" validate:"required"`
		Sectors []struct {
			Name string `json:"name" validate:"required"`
		} `json:"sectors" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	facility := &domain.Facility{
		OrganizationID: myInfo.OrganizationID,
		Name:           req.Name,
		Sectors:        make([]domain.Sector, 0, len(req.Sectors)),
	}

	for _, sector := range req.Sectors {
		facility.Sectors = append(facility.Sectors, domain.Sector{
			Name: sector.Name,
		})
	}

	if err := h.repository.CreateFacility(facility); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "facilities_organization_id_name_key":
				h.errorResponse(w, r, "科室名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建科室成功", facility)
}

func (h *Handler) GetAllFacilities(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	facilities, err := h.repository.GetAllFacilitiesByOrganization(myInfo.OrganizationID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取科室列表成功", facilities)
}

func (h *Handler) GetFacility(w http.ResponseWriter, r *http.Request) {
	facility := r.Context().Value(FacilityCtx).(*domain.Facility)
	h.successResponse(w, r, "获取科室成功", facility)
}

func (h *Handler) UpdateFacility(w http.ResponseWriter, r *http.Request) {
	facility := r.Context().Value(FacilityCtx).(*domain.Facility)

	var req struct {
		Name *string `json:"name"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		facility.Name = *req.Name
	}

	if err := h.repository.UpdateFacility(facility); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "facilities_organization_id_name_key":
				h.errorResponse(w, r, "科室名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新科室成功", facility)
}

func (h *Handler) DeleteFacility(w http.ResponseWriter, r *http.Request) {
	facility := r.Context().Value(FacilityCtx).(*domain.Facility)

	if err := h.repository.DeleteFacility(facility.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "recurring_definitions_facility_id_fkey":
				h.errorResponse(w, r, "该科室已被排班规则引用，无法删除")
			case "materialized_shifts_facility_id_fkey":
				h.errorResponse(w, r, "该科室存在班次记录，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除科室成功", nil)
}

func (h *Handler) CreateSector(w http.ResponseWriter, r *http.Request) {
	facility := r.Context().Value(FacilityCtx).(*domain.Facility)

	var req struct {
		Name string `json:"name" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sector := &domain.Sector{
		FacilityID: facility.ID,
		Name:       req.Name,
	}

	if err := h.repository.CreateSector(sector); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "sectors_facility_id_name_key":
				h.errorResponse(w, r, "分区名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建分区成功", sector)
}

func (h *Handler) DeleteSector(w http.ResponseWriter, r *http.Request) {
	facility := r.Context().Value(FacilityCtx).(*domain.Facility)

	sectorIDParam := chi.URLParam(r, "sectorID")
	sectorID, err := strconv.ParseInt(sectorIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "分区ID无效")
		return
	}

	// 确认分区属于这个科室
	found := false
	for _, sector := range facility.Sectors {
		if sector.ID == sectorID {
			found = true
			break
		}
	}
	if !found {
		h.errorResponse(w, r, "分区不存在")
		return
	}

	if err := h.repository.DeleteSector(sectorID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "recurring_definitions_sector_id_fkey":
				h.errorResponse(w, r, "该分区已被排班规则引用，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除分区成功", nil)
}
