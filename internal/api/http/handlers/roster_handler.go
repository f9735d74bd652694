package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-chat/internal/api/dto"
	"github.com/spec-kit/classroom-chat/internal/service"
)

// RosterHandler exposes admin-gated user and course management.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(rosterService *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: rosterService}
}

// ListUsers handles GET /api/admin/users.
func (h *RosterHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.roster.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, dto.UserResponse{
			StudentID: user.StudentID,
			Name:      user.Name,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"success": true, "users": out})
}

// CreateUser handles POST /api/admin/users.
func (h *RosterHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if _, err := h.roster.CreateUser(c.UserContext(), req.StudentID, req.Name); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true})
}

// UpdateUser handles PUT /api/admin/users/:studentId.
func (h *RosterHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.roster.UpdateUser(c.UserContext(), c.Params("studentId"), req.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteUser handles DELETE /api/admin/users/:studentId.
func (h *RosterHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.roster.DeleteUser(c.UserContext(), c.Params("studentId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// BatchDeleteUsers handles POST /api/admin/users/batch-delete.
func (h *RosterHandler) BatchDeleteUsers(c *fiber.Ctx) error {
	var req dto.BatchDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	deleted, err := h.roster.BatchDeleteUsers(c.UserContext(), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "deleted": deleted})
}

// ImportUsers handles POST /api/admin/users/import.
func (h *RosterHandler) ImportUsers(c *fiber.Ctx) error {
	var req dto.ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	imported, err := h.roster.ImportUsersCSV(c.UserContext(), req.CSVContent)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "imported": imported})
}

// ListCourses handles GET /api/admin/courses.
func (h *RosterHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.roster.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		out = append(out, dto.CourseResponse{
			CourseID:   course.CourseID,
			CourseName: course.CourseName,
			CreatedAt:  course.CreatedAt,
			UpdatedAt:  course.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"success": true, "courses": out})
}

// CreateCourse handles POST /api/admin/courses.
func (h *RosterHandler) CreateCourse(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if _, err := h.roster.CreateCourse(c.UserContext(), req.CourseID, req.CourseName); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true})
}

// UpdateCourse handles PUT /api/admin/courses/:courseId.
func (h *RosterHandler) UpdateCourse(c *fiber.Ctx) error {
	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.roster.UpdateCourse(c.UserContext(), c.Params("courseId"), req.CourseName); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteCourse handles DELETE /api/admin/courses/:courseId.
func (h *RosterHandler) DeleteCourse(c *fiber.Ctx) error {
	if err := h.roster.DeleteCourse(c.UserContext(), c.Params("courseId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// BatchDeleteCourses handles POST /api/admin/courses/batch-delete.
func (h *RosterHandler) BatchDeleteCourses(c *fiber.Ctx) error {
	var req dto.BatchDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	deleted, err := h.roster.BatchDeleteCourses(c.UserContext(), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "deleted": deleted})
}

// ImportCourses handles POST /api/admin/courses/import.
func (h *RosterHandler) ImportCourses(c *fiber.Ctx) error {
	var req dto.ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	imported, err := h.roster.ImportCoursesCSV(c.UserContext(), req.CSVContent)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "imported": imported})
}
