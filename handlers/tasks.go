package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/models"
)

// TasksHandler – задания дня с отметками выполнения текущего пользователя
func TasksHandler(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("userID")

	tasks, err := models.ListTasks(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}
	completions, err := models.CompletionTimes(ctx, database.Pool, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}

	type taskView struct {
		models.DailyTask
		Completed bool `json:"completed"`
	}
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		done, ok := completions[t.Position]
		// Зачтено только выполнение после последнего обновления задания
		views = append(views, taskView{DailyTask: t, Completed: ok && done.After(t.UpdatedAt)})
	}

	c.JSON(http.StatusOK, gin.H{"tasks": views})
}

// CompleteTaskHandler отмечает выполнение задания
func CompleteTaskHandler(c *gin.Context) {
	userID := c.GetString("userID")
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task position"})
		return
	}

	if err := models.CompleteTask(c.Request.Context(), userID, position); err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task completed"})
}

// AdminUpsertTaskHandler создаёт или обновляет задание. Обновление сдвигает
// updated_at – прошлые выполнения перестают засчитываться.
func AdminUpsertTaskHandler(c *gin.Context) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil || position < 1 || position > 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task position must be 1..4"})
		return
	}

	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := models.UpsertTask(c.Request.Context(), position, req.ImageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func AdminDeleteTaskHandler(c *gin.Context) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task position"})
		return
	}

	if err := models.DeleteTask(c.Request.Context(), position); err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}
