package router

import (
	"time"

	"github.com/clehider/BazarMundoVictor/internal/config"
	"github.com/clehider/BazarMundoVictor/internal/handler"
	"github.com/clehider/BazarMundoVictor/internal/kvstore"
	"github.com/clehider/BazarMundoVictor/internal/middleware"
	"github.com/clehider/BazarMundoVictor/internal/repository"
	"github.com/clehider/BazarMundoVictor/internal/service"
	"github.com/clehider/BazarMundoVictor/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Store/Redis
func New(cfg *config.Config, store kvstore.Store, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(store)
	productoRepo := repository.NewProductoRepository(store)
	ventaRepo := repository.NewVentaRepository(store)
	cajaRepo := repository.NewCajaRepository(store)
	gastoRepo := repository.NewGastoRepository(store)
	categoriaRepo := repository.NewCategoriaRepository(store)
	configRepo := repository.NewConfiguracionRepository(store)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	cajaSvc := service.NewCajaService(cajaRepo)
	ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, productoRepo, dispatcher)
	gastoSvc := service.NewGastoService(gastoRepo, cajaRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	configSvc := service.NewConfiguracionService(configRepo)
	reporteSvc := service.NewReporteService(cajaRepo, ventaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductoHandler(productoSvc)
	ventasH := handler.NewVentaHandler(ventaSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	gastosH := handler.NewGastoHandler(gastoSvc)
	categoriasH := handler.NewCategoriaHandler(categoriaSvc)
	configH := handler.NewConfiguracionHandler(configSvc)
	reportesH := handler.NewReporteHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(store, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes. Roles: admin, vendedor — declared per-endpoint.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/ventas", middleware.RequireRole("admin", "vendedor"), ventasH.Registrar)
		v1.GET("/ventas", middleware.RequireRole("admin", "vendedor"), ventasH.Listar)
		v1.GET("/ventas/:id", middleware.RequireRole("admin", "vendedor"), ventasH.Obtener)
		v1.DELETE("/ventas/:id", middleware.RequireRole("admin"), ventasH.Anular)
		v1.POST("/ventas/:id/reintentar-movimiento", middleware.RequireRole("admin"), ventasH.ReintentarMovimiento)

		v1.GET("/productos", middleware.RequireRole("admin", "vendedor"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("admin", "vendedor"), productosH.Obtener)
		v1.GET("/productos/codigo/:codigo", middleware.RequireRole("admin", "vendedor"), productosH.PorCodigo)
		v1.GET("/productos/bajo-stock", middleware.RequireRole("admin", "vendedor"), productosH.BajoStock)
		prods := v1.Group("/productos", middleware.RequireRole("admin"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/stock", productosH.AjustarStock)
		}

		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", middleware.RequireRole("admin", "vendedor"), cajaH.Abrir)
			caja.POST("/cerrar", middleware.RequireRole("admin", "vendedor"), cajaH.Cerrar)
			caja.GET("/actual", middleware.RequireRole("admin", "vendedor"), cajaH.Actual)
			caja.POST("/abonos", middleware.RequireRole("admin", "vendedor"), cajaH.RegistrarAbono)
			caja.GET("/historial", middleware.RequireRole("admin"), cajaH.Historial)
			caja.GET("/:id", middleware.RequireRole("admin"), cajaH.Obtener)
			caja.GET("/:id/reporte", middleware.RequireRole("admin"), reportesH.ReporteCaja)
		}

		v1.POST("/gastos", middleware.RequireRole("admin", "vendedor"), gastosH.Registrar)
		v1.GET("/gastos", middleware.RequireRole("admin", "vendedor"), gastosH.Listar)

		// Categorías — admin can write, all authenticated can read
		v1.GET("/categorias", middleware.RequireRole("admin", "vendedor"), categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRole("admin"))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Eliminar)
		}

		v1.GET("/reportes/ventas", middleware.RequireRole("admin"), reportesH.ResumenVentas)

		v1.GET("/configuracion/empresa", middleware.RequireRole("admin", "vendedor"), configH.Empresa)
		v1.PUT("/configuracion/empresa", middleware.RequireRole("admin"), configH.GuardarEmpresa)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("admin"))
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
		}
	}

	return r
}
