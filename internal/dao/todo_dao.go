package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invinciblehaolong/halolab/internal/model"
	"github.com/invinciblehaolong/halolab/pkg/database/postgres"
	"github.com/invinciblehaolong/halolab/pkg/logger"
)

// ErrTodoNotFound 待办不存在
var ErrTodoNotFound = errors.New("dao: todo not found")

// TodoDAO 待办事项数据访问
type TodoDAO struct {
	db     *postgres.Client
	logger logger.Logger
}

// NewTodoDAO 创建待办 DAO
func NewTodoDAO(db *postgres.Client, l logger.Logger) *TodoDAO {
	if l == nil {
		l = logger.Default()
	}
	return &TodoDAO{
		db:     db,
		logger: l.Named("dao.todo"),
	}
}

// List 按 id 升序返回全部待办
func (d *TodoDAO) List(ctx context.Context) ([]*model.Todo, error) {
	sql, args, err := postgres.QueryBuilder.
		Select("id", "title", "completed").
		From("todos").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list failed: %w", err)
	}
	rows, err := postgres.QueryAll[model.Todo](d.db, ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos failed: %w", err)
	}
	return rows, nil
}

// Get 按 id 查询单个待办，不存在返回 ErrTodoNotFound
func (d *TodoDAO) Get(ctx context.Context, id int64) (*model.Todo, error) {
	sql, args, err := postgres.QueryBuilder.
		Select("id", "title", "completed").
		From("todos").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get failed: %w", err)
	}
	todo, err := postgres.QueryOne[model.Todo](d.db, ctx, sql, args...)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo failed: %w", err)
	}
	return todo, nil
}

// Create 新增待办并返回生成的 id
func (d *TodoDAO) Create(ctx context.Context, title string) (*model.Todo, error) {
	sql, args, err := postgres.QueryBuilder.
		Insert("todos").
		Columns("title", "completed").
		Values(title, false).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert failed: %w", err)
	}

	todo := &model.Todo{Title: title}
	if err := d.db.QueryRowScan(ctx, sql, args, &todo.ID); err != nil {
		return nil, fmt.Errorf("create todo failed: %w", err)
	}
	return todo, nil
}

// Update 更新标题或完成状态，title 为 nil 表示不改标题
func (d *TodoDAO) Update(ctx context.Context, id int64, title *string, completed *bool) (*model.Todo, error) {
	builder := postgres.QueryBuilder.Update("todos")
	if title != nil {
		builder = builder.Set("title", *title)
	}
	if completed != nil {
		builder = builder.Set("completed", *completed)
	}
	sql, args, err := builder.
		Where("id = ?", id).
		Suffix("RETURNING id, title, completed").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update failed: %w", err)
	}

	todo := &model.Todo{}
	if err := d.db.QueryRowScan(ctx, sql, args, &todo.ID, &todo.Title, &todo.Completed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("update todo failed: %w", err)
	}
	return todo, nil
}

// Delete 删除待办，不存在返回 ErrTodoNotFound
func (d *TodoDAO) Delete(ctx context.Context, id int64) error {
	sql, args, err := postgres.QueryBuilder.
		Delete("todos").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete failed: %w", err)
	}
	affected, err := d.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete todo failed: %w", err)
	}
	if affected == 0 {
		return ErrTodoNotFound
	}
	return nil
}
