package db

import (
	"context"
	"testing"
	"time"

	"github.com/existflow/todoserver/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func ptr[T any](v T) *T { return &v }

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mongo", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: "postgres"}
	lite := &DB{driver: "sqlite"}

	q := "SELECT * FROM todos WHERE id = ? AND uid = ?"
	assert.Equal(t, "SELECT * FROM todos WHERE id = $1 AND uid = $2", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
	assert.Equal(t, " FOR UPDATE", pg.forUpdate())
	assert.Equal(t, "", lite.forUpdate())
}

func TestTodoRoundTrip(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	due := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	todo := model.NewTodo("u1", "Write report")
	todo.DueDate = &due
	todo.Priority = ptr(model.PriorityHigh)
	todo.Description = ptr("quarterly numbers")
	todo.ProjectID = ptr("p1")

	require.NoError(t, database.CreateTodo(ctx, todo))

	got, err := database.GetTodo(ctx, "u1", todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	assert.False(t, got.Completed)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, model.PriorityHigh, *got.Priority)
	assert.Equal(t, "quarterly numbers", *got.Description)
	assert.Equal(t, "p1", got.ProjectRef())
	assert.Nil(t, got.ExpireAt)

	// Other users cannot see it
	_, err = database.GetTodo(ctx, "u2", todo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTodos(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	todos, err := database.ListTodos(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, todos)

	require.NoError(t, database.CreateTodo(ctx, model.NewTodo("u1", "first")))
	require.NoError(t, database.CreateTodo(ctx, model.NewTodo("u1", "second")))
	require.NoError(t, database.CreateTodo(ctx, model.NewTodo("u2", "other")))

	todos, err = database.ListTodos(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "first", todos[0].Title)
	assert.Equal(t, "second", todos[1].Title)
}

func TestUpdateTodoOverwritesFields(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	todo := model.NewTodo("u1", "draft")
	todo.Description = ptr("old")
	todo.Priority = ptr(model.PriorityUrgent)
	require.NoError(t, database.CreateTodo(ctx, todo))

	todo.Title = "final"
	todo.Completed = true
	todo.Description = nil
	todo.Priority = nil
	require.NoError(t, database.UpdateTodo(ctx, todo))

	got, err := database.GetTodo(ctx, "u1", todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.True(t, got.Completed)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.Priority)

	missing := model.NewTodo("u1", "ghost")
	assert.ErrorIs(t, database.UpdateTodo(ctx, missing), ErrNotFound)
}

func TestDeleteTodo(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	todo := model.NewTodo("u1", "temp")
	require.NoError(t, database.CreateTodo(ctx, todo))

	assert.ErrorIs(t, database.DeleteTodo(ctx, "u2", todo.ID), ErrNotFound)
	require.NoError(t, database.DeleteTodo(ctx, "u1", todo.ID))
	assert.ErrorIs(t, database.DeleteTodo(ctx, "u1", todo.ID), ErrNotFound)
}

func TestPurgeExpiredTodos(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	now := time.Now()

	expired := model.NewTodo("anon", "old")
	expired.ExpireAt = ptr(now.Add(-time.Hour))
	live := model.NewTodo("anon", "fresh")
	live.ExpireAt = ptr(now.Add(time.Hour))
	kept := model.NewTodo("u1", "permanent")

	for _, todo := range []*model.Todo{expired, live, kept} {
		require.NoError(t, database.CreateTodo(ctx, todo))
	}

	// Expired todos are hidden before the sweep
	todos, err := database.ListTodos(ctx, "anon")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "fresh", todos[0].Title)
	_, err = database.GetTodo(ctx, "anon", expired.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := database.PurgeExpiredTodos(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = database.GetTodo(ctx, "anon", live.ID)
	assert.NoError(t, err)
	_, err = database.GetTodo(ctx, "u1", kept.ID)
	assert.NoError(t, err)
}

func TestProjectTodoList(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	project := model.NewProject("u1", "Work")
	require.NoError(t, database.CreateProject(ctx, project))

	require.NoError(t, database.AddTodoToProject(ctx, "u1", project.ID, "t1"))
	require.NoError(t, database.AddTodoToProject(ctx, "u1", project.ID, "t1"))
	require.NoError(t, database.AddTodoToProject(ctx, "u1", project.ID, "t2"))

	got, err := database.GetProject(ctx, "u1", project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, got.TodoList)

	require.NoError(t, database.RemoveTodoFromProject(ctx, "u1", project.ID, "t1"))
	got, err = database.GetProject(ctx, "u1", project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, got.TodoList)

	// Foreign and missing projects are no-ops
	require.NoError(t, database.AddTodoToProject(ctx, "u2", project.ID, "t3"))
	require.NoError(t, database.AddTodoToProject(ctx, "u1", "missing", "t3"))
	got, err = database.GetProject(ctx, "u1", project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, got.TodoList)
}

func TestListProjects(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.CreateProject(ctx, model.NewProject("u1", "Home")))
	require.NoError(t, database.CreateProject(ctx, model.NewProject("u2", "Other")))

	projects, err := database.ListProjects(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Home", projects[0].Name)
	assert.Equal(t, []string{}, projects[0].TodoList)

	_, err = database.GetProject(ctx, "u2", projects[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
