package postgres

import "github.com/Masterminds/squirrel"

// QueryBuilder SQL 查询构建器（基于 squirrel，$N 占位符）
var QueryBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
