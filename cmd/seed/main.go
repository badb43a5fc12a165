package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/config"
	"github.com/careshift-dev/roster-manager/backend/internal/domain"
	"github.com/careshift-dev/roster-manager/backend/internal/repository"
	"github.com/careshift-dev/roster-manager/backend/internal/roster"
	"github.com/careshift-dev/roster-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var facilityNames = []string{"内科病区", "外科病区", "急诊科", "重症监护室", "儿科病区", "妇产科病区"}
var sectorNames = []string{"A 区", "B 区", "C 区"}

func main() {
	var op int
	var n int
	var organizationID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机机构和科室, 2: 插入随机用户, 3: 插入随机排班规则并生成班次)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&organizationID, "organization-id", 0, "目标机构 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的机构数量")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			org := &domain.Organization{Name: fmt.Sprintf("测试医院 %d 号", rand.Intn(100000))}
			if err := repo.CreateOrganization(org); err != nil {
				slog.Error("无法插入机构", slog.String("error", err.Error()))
				continue
			}

			// 每个机构随机配 2 到 4 个科室，每个科室带分区
			for j := 0; j < rand.Intn(3)+2; j++ {
				facility := &domain.Facility{
					OrganizationID: org.ID,
					Name:           facilityNames[rand.Intn(len(facilityNames))],
					Sectors:        make([]domain.Sector, 0),
				}
				for _, sectorName := range sectorNames[:rand.Intn(len(sectorNames))+1] {
					facility.Sectors = append(facility.Sectors, domain.Sector{Name: sectorName})
				}
				if err := repo.CreateFacility(facility); err != nil {
					slog.Error("无法插入科室", slog.String("error", err.Error()))
				}
			}

			cnt--
		}

		slog.Info("插入机构成功", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}
		if organizationID <= 0 {
			slog.Error("请输入合法的机构 ID")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain, organizationID)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入用户成功", slog.Int("count", n-cnt))
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的规则数量")
			return
		}
		if organizationID <= 0 {
			slog.Error("请输入合法的机构 ID")
			return
		}

		users, err := repo.GetAllUsersByOrganization(organizationID)
		if err != nil {
			slog.Error("无法获取机构用户", slog.String("error", err.Error()))
			return
		}
		facilities, err := repo.GetAllFacilitiesByOrganization(organizationID)
		if err != nil {
			slog.Error("无法获取机构科室", slog.String("error", err.Error()))
			return
		}
		if len(users) == 0 || len(facilities) == 0 {
			slog.Error("机构内没有可用的用户或科室，请先执行前面的操作")
			return
		}

		materializer := roster.NewMaterializer(repo, cfg.Schedule.HorizonMonths)
		now := time.Now()

		cnt := n
		for i := 0; i < n; i++ {
			staff := users[rand.Intn(len(users))]
			facility := facilities[rand.Intn(len(facilities))]

			def := &domain.RecurringScheduleDefinition{
				StaffID:        staff.ID,
				OrganizationID: organizationID,
				FacilityID:     facility.ID,
				ShiftType:      utils.GenerateRandomShiftType(),
				Weekdays:       utils.GenerateRandomWeekdays(),
				DurationType:   domain.DurationTypePermanent,
				StartDate:      now.Format(roster.DateLayout),
				Active:         true,
			}
			if len(facility.Sectors) > 0 {
				sectorID := facility.Sectors[rand.Intn(len(facility.Sectors))].ID
				def.SectorID = &sectorID
			}

			// 随机规则之间可能冲突，冲突的直接丢弃，保证落库的数据互不重叠
			existing, err := repo.GetActiveDefinitionsByStaff(staff.ID)
			if err != nil {
				slog.Error("无法获取员工规则", slog.String("error", err.Error()))
				continue
			}
			reports, err := roster.DetectConflicts(roster.Candidate{
				StaffID:   def.StaffID,
				ShiftType: def.ShiftType,
				StartDate: def.StartDate,
				EndDate:   def.EndDate,
				Weekdays:  def.Weekdays,
			}, existing)
			if err != nil || len(reports) > 0 {
				continue
			}

			if err := repo.CreateDefinition(def); err != nil {
				slog.Error("无法插入排班规则", slog.String("error", err.Error()))
				continue
			}

			count, err := materializer.Generate(def, now)
			if err != nil {
				slog.Error("无法生成班次", slog.String("error", err.Error()))
				continue
			}
			slog.Info("插入排班规则成功", slog.Int64("definition_id", def.ID), slog.Int("shift_count", count))

			cnt--
		}

		slog.Info("插入排班规则完成", slog.Int("count", n-cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
