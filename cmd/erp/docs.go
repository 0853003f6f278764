package main

// @title Manufacturing ERP API
// @version 1.0
// @description Materials, bills of materials, production planning and purchasing with full observability (logging, tracing, metrics)

// @contact.name API Support
// @contact.url http://github.com/tair/manufacturing-erp

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Materials
// @tag.description Material master data and stock

// @tag.name Products
// @tag.description Products and their bills of materials

// @tag.name Production Orders
// @tag.description Production orders, operations and quality checks

// @tag.name Work Centers
// @tag.description Work center master data

// @tag.name Planning
// @tag.description Material availability, usage and requirement reports

// @tag.name Purchase Orders
// @tag.description Purchase orders and their lines

// @tag.name Suppliers
// @tag.description Supplier master data
